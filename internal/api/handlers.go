package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"xpeak/internal/engine"
	"xpeak/internal/storage"
)

func registerRoutes(r chi.Router, s *Server) {
	r.Get("/profile", s.getProfile)
	r.Patch("/profile", s.patchProfile)
	r.Get("/achievements", s.listAchievements)

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", s.listTasks)
		r.Post("/", s.createTask)
		r.Delete("/{taskID}", s.deleteTask)
		r.Post("/{taskID}/toggle", s.toggleTask)
	})
	r.Post("/habits/sweep", s.sweepHabits)

	r.Route("/quests", func(r chi.Router) {
		r.Get("/", s.listQuests)
		r.Post("/", s.createQuest)
		r.Route("/{questID}", func(r chi.Router) {
			r.Get("/", s.getQuest)
			r.Delete("/", s.deleteQuest)
			r.Post("/breakdown", s.breakdownQuest)
			r.Post("/bonus", s.proposeBonus)
			r.Post("/categories", s.addCategory)
			r.Delete("/categories/{categoryID}", s.deleteCategory)
			r.Post("/categories/{categoryID}/tasks", s.addQuestTask)
			r.Delete("/categories/{categoryID}/tasks/{taskID}", s.deleteQuestTask)
			r.Post("/categories/{categoryID}/tasks/{taskID}/toggle", s.toggleQuestTask)
		})
	})

	r.Get("/bonuses", s.listBonuses)
	r.Post("/bonuses/{bonusID}/confirm", s.answerBonus(true))
	r.Post("/bonuses/{bonusID}/decline", s.answerBonus(false))

	r.Route("/challenges", func(r chi.Router) {
		r.Get("/", s.listChallenges)
		r.Post("/", s.createChallenge)
		r.Post("/{challengeID}/progress", s.challengeProgress)
		r.Post("/{challengeID}/claim", s.claimChallenge)
	})
}

type xpChangeJSON struct {
	XPDelta     int  `json:"xpDelta"`
	LevelBefore int  `json:"levelBefore"`
	LevelAfter  int  `json:"levelAfter"`
	LevelUp     bool `json:"levelUp"`
	LevelDown   bool `json:"levelDown"`
}

func toXPChange(c engine.XPChange) xpChangeJSON {
	return xpChangeJSON{
		XPDelta:     c.XPDelta,
		LevelBefore: c.LevelBefore,
		LevelAfter:  c.LevelAfter,
		LevelUp:     c.LevelUp,
		LevelDown:   c.LevelDown,
	}
}

type bonusJSON struct {
	ID         string    `json:"id"`
	QuestID    string    `json:"questId"`
	QuestTitle string    `json:"questTitle"`
	Amount     int       `json:"amount"`
	Categories int       `json:"categories"`
	ProposedAt time.Time `json:"proposedAt"`
}

func toBonus(p *engine.PendingBonus) *bonusJSON {
	if p == nil {
		return nil
	}
	return &bonusJSON{
		ID:         p.ID,
		QuestID:    p.QuestID,
		QuestTitle: p.QuestTitle,
		Amount:     p.Amount,
		Categories: p.Categories,
		ProposedAt: p.ProposedAt,
	}
}

type profileJSON struct {
	storage.Profile
	Progress struct {
		Current    int     `json:"current"`
		Max        int     `json:"max"`
		Percentage float64 `json:"percentage"`
	} `json:"progress"`
}

func (s *Server) getProfile(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toProfile(s.store.Profile()))
}

func toProfile(p storage.Profile) profileJSON {
	out := profileJSON{Profile: p}
	prog := engine.Progress(p.TotalXP, p.Level)
	out.Progress.Current = prog.Current
	out.Progress.Max = prog.Max
	out.Progress.Percentage = prog.Percentage
	return out
}

type profilePatchRequest struct {
	Name     *string  `json:"name"`
	Identity *string  `json:"identity"`
	Goals    []string `json:"goals"`
}

func (s *Server) patchProfile(w http.ResponseWriter, r *http.Request) {
	var req profilePatchRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := s.store.UpdateProfile(r.Context(), engine.ProfilePatch{Name: req.Name, Identity: req.Identity, Goals: req.Goals})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfile(p))
}

type achievementJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Earned      bool   `json:"earned"`
}

func (s *Server) listAchievements(w http.ResponseWriter, _ *http.Request) {
	all := s.store.Achievements()
	out := make([]achievementJSON, 0, len(all))
	for _, a := range all {
		out = append(out, achievementJSON{ID: a.ID, Name: a.Name, Description: a.Description, Icon: a.Icon, Earned: a.Earned})
	}
	writeJSON(w, http.StatusOK, out)
}

type taskRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Difficulty    string `json:"difficulty"`
	SkillCategory string `json:"skillCategory"`
	IsHabit       bool   `json:"isHabit"`
}

type taskResultJSON struct {
	Task  storage.Task `json:"task"`
	Base  int          `json:"baseXP"`
	Mult  float64      `json:"streakMultiplier"`
	Award int          `json:"awardXP"`
	xpChangeJSON
}

func (s *Server) listTasks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Tasks())
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, invalid("title is required"))
		return
	}
	d := engine.DefaultDifficulty
	if req.Difficulty != "" {
		var err error
		if d, err = engine.ParseDifficulty(req.Difficulty); err != nil {
			writeError(w, invalid("%v", err))
			return
		}
	}
	t, err := s.store.AddTask(r.Context(), engine.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Difficulty:  d,
		Skill:       engine.ParseSkill(req.SkillCategory),
		IsHabit:     req.IsHabit,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	res, err := s.store.DeleteTask(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !res.Applied {
		notFound(w, "task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) toggleTask(w http.ResponseWriter, r *http.Request) {
	res, err := s.store.ToggleTask(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !res.Applied {
		notFound(w, "task")
		return
	}
	writeJSON(w, http.StatusOK, taskResultJSON{
		Task:         res.Task,
		Base:         res.XP.Base,
		Mult:         res.XP.StreakMultiplier,
		Award:        res.XP.Total,
		xpChangeJSON: toXPChange(res.XPChange),
	})
}

func (s *Server) sweepHabits(w http.ResponseWriter, r *http.Request) {
	res, err := s.store.SweepHabits(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"reset": res.Reset, "streaksBroken": res.StreaksBroken})
}

type questRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
}

type questResultJSON struct {
	Quest             *storage.Quest `json:"quest,omitempty"`
	TaskXP            int            `json:"taskXP"`
	SectionBonus      int            `json:"sectionBonus"`
	QuestBonusRevoked int            `json:"questBonusRevoked"`
	QuestComplete     bool           `json:"questComplete"`
	Pending           *bonusJSON     `json:"pendingBonus,omitempty"`
	xpChangeJSON
}

func (s *Server) writeQuestResult(w http.ResponseWriter, res *engine.QuestResult, what string) {
	if !res.Applied {
		notFound(w, what)
		return
	}
	out := questResultJSON{
		TaskXP:            res.TaskXP,
		SectionBonus:      res.SectionBonus,
		QuestBonusRevoked: res.QuestBonusRevoked,
		QuestComplete:     res.QuestComplete,
		Pending:           toBonus(res.Pending),
		xpChangeJSON:      toXPChange(res.XPChange),
	}
	if q, ok := s.store.Quest(res.QuestID); ok {
		out.Quest = &q
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listQuests(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Quests())
}

func (s *Server) getQuest(w http.ResponseWriter, r *http.Request) {
	q, ok := s.store.Quest(chi.URLParam(r, "questID"))
	if !ok {
		notFound(w, "quest")
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) createQuest(w http.ResponseWriter, r *http.Request) {
	var req questRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, invalid("title is required"))
		return
	}
	q, err := s.store.CreateQuest(r.Context(), engine.QuestInput{Title: req.Title, Description: req.Description, Categories: req.Categories})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (s *Server) deleteQuest(w http.ResponseWriter, r *http.Request) {
	res, err := s.store.DeleteQuest(r.Context(), chi.URLParam(r, "questID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !res.Applied {
		notFound(w, "quest")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) breakdownQuest(w http.ResponseWriter, r *http.Request) {
	res, err := s.store.BreakdownQuest(r.Context(), chi.URLParam(r, "questID"))
	if err != nil {
		writeError(w, err)
		return
	}
	s.writeQuestResult(w, res, "quest")
}

func (s *Server) proposeBonus(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.ProposeQuestBonus(r.Context(), chi.URLParam(r, "questID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if p == nil {
		notFound(w, "quest")
		return
	}
	writeJSON(w, http.StatusOK, toBonus(p))
}

type titleRequest struct {
	Title string `json:"title"`
}

func (s *Server) addCategory(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, invalid("title is required"))
		return
	}
	res, err := s.store.AddCategory(r.Context(), chi.URLParam(r, "questID"), req.Title)
	if err != nil {
		writeError(w, err)
		return
	}
	s.writeQuestResult(w, res, "quest")
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	res, err := s.store.DeleteCategory(r.Context(), chi.URLParam(r, "questID"), chi.URLParam(r, "categoryID"))
	if err != nil {
		writeError(w, err)
		return
	}
	s.writeQuestResult(w, res, "category")
}

type questTaskRequest struct {
	Name          string `json:"name"`
	Difficulty    string `json:"difficulty"`
	SkillCategory string `json:"skillCategory"`
}

func (s *Server) addQuestTask(w http.ResponseWriter, r *http.Request) {
	var req questTaskRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, invalid("name is required"))
		return
	}
	d := engine.DefaultDifficulty
	if req.Difficulty != "" {
		var err error
		if d, err = engine.ParseDifficulty(req.Difficulty); err != nil {
			writeError(w, invalid("%v", err))
			return
		}
	}
	res, err := s.store.AddQuestTask(r.Context(), chi.URLParam(r, "questID"), chi.URLParam(r, "categoryID"),
		engine.QuestTaskInput{Name: req.Name, Difficulty: d, Skill: engine.ParseSkill(req.SkillCategory)})
	if err != nil {
		writeError(w, err)
		return
	}
	s.writeQuestResult(w, res, "category")
}

func (s *Server) deleteQuestTask(w http.ResponseWriter, r *http.Request) {
	res, err := s.store.DeleteQuestTask(r.Context(), chi.URLParam(r, "questID"), chi.URLParam(r, "categoryID"), chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, err)
		return
	}
	s.writeQuestResult(w, res, "task")
}

func (s *Server) toggleQuestTask(w http.ResponseWriter, r *http.Request) {
	res, err := s.store.ToggleQuestTask(r.Context(), chi.URLParam(r, "questID"), chi.URLParam(r, "categoryID"), chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, err)
		return
	}
	s.writeQuestResult(w, res, "task")
}

func (s *Server) listBonuses(w http.ResponseWriter, _ *http.Request) {
	pending := s.store.PendingBonuses()
	out := make([]*bonusJSON, 0, len(pending))
	for i := range pending {
		out = append(out, toBonus(&pending[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

type bonusOutcomeJSON struct {
	Applied bool   `json:"applied"`
	Amount  int    `json:"amount"`
	Reason  string `json:"reason,omitempty"`
	xpChangeJSON
}

func (s *Server) answerBonus(accept bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := s.store.ConfirmBonus(r.Context(), chi.URLParam(r, "bonusID"), accept)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, bonusOutcomeJSON{
			Applied:      out.Applied,
			Amount:       out.Amount,
			Reason:       out.Reason,
			xpChangeJSON: toXPChange(out.XPChange),
		})
	}
}

type challengeRequest struct {
	Title       string `json:"title"`
	Opponent    string `json:"opponent"`
	Metric      string `json:"metric"`
	TargetValue int    `json:"targetValue"`
	RewardXP    int    `json:"rewardXP"`
}

type progressRequest struct {
	MyProgress       int `json:"myProgress"`
	OpponentProgress int `json:"opponentProgress"`
}

type challengeResultJSON struct {
	Applied   bool              `json:"applied"`
	Challenge storage.Challenge `json:"challenge"`
	xpChangeJSON
}

func (s *Server) listChallenges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListChallenges(r.URL.Query().Get("status")))
}

func (s *Server) createChallenge(w http.ResponseWriter, r *http.Request) {
	var req challengeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	switch {
	case strings.TrimSpace(req.Title) == "":
		writeError(w, invalid("title is required"))
		return
	case strings.TrimSpace(req.Opponent) == "":
		writeError(w, invalid("opponent is required"))
		return
	case req.TargetValue <= 0:
		writeError(w, invalid("targetValue must be positive"))
		return
	case req.RewardXP < 0:
		writeError(w, invalid("rewardXP must not be negative"))
		return
	}
	ch, err := s.store.CreateChallenge(r.Context(), engine.ChallengeInput{
		Title:       req.Title,
		Opponent:    req.Opponent,
		Metric:      req.Metric,
		TargetValue: req.TargetValue,
		RewardXP:    req.RewardXP,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ch)
}

func (s *Server) challengeProgress(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.MyProgress < 0 || req.OpponentProgress < 0 {
		writeError(w, invalid("progress must not be negative"))
		return
	}
	res, err := s.store.UpdateChallengeProgress(r.Context(), chi.URLParam(r, "challengeID"), req.MyProgress, req.OpponentProgress)
	if err != nil {
		writeError(w, err)
		return
	}
	s.writeChallengeResult(w, res)
}

func (s *Server) claimChallenge(w http.ResponseWriter, r *http.Request) {
	res, err := s.store.ClaimChallenge(r.Context(), chi.URLParam(r, "challengeID"))
	if err != nil {
		writeError(w, err)
		return
	}
	s.writeChallengeResult(w, res)
}

// writeChallengeResult answers 404 only for a missing challenge; a finished
// challenge that ignored the update is reported with applied=false.
func (s *Server) writeChallengeResult(w http.ResponseWriter, res *engine.ChallengeResult) {
	if !res.Applied && res.Challenge.ID == "" {
		notFound(w, "challenge")
		return
	}
	writeJSON(w, http.StatusOK, challengeResultJSON{
		Applied:      res.Applied,
		Challenge:    res.Challenge,
		xpChangeJSON: toXPChange(res.XPChange),
	})
}
