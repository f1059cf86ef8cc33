package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"xpeak/internal/storage"
)

// TemplateSource tells built-in templates from the user's own.
type TemplateSource string

const (
	TemplateBuiltin TemplateSource = "builtin"
	TemplateUser    TemplateSource = "user"
)

// TemplateDef is a task template as listed to the user.
type TemplateDef struct {
	storage.Template
	Source   TemplateSource
	MinLevel int
	Locked   bool
}

// Levels at which built-in templates unlock.
const (
	LevelHabitTemplates = 3
	LevelHardTemplates  = 5
	LevelEpicTemplates  = 10
)

func builtinTemplates() []TemplateDef {
	return []TemplateDef{
		{Template: storage.Template{Name: "pushups", Title: "Push-ups", Difficulty: string(DifficultyEasy), Skill: string(SkillPhysical), IsHabit: true}},
		{Template: storage.Template{Name: "read", Title: "Read 20 pages", Difficulty: string(DifficultyEasy), Skill: string(SkillMental), IsHabit: true}},
		{Template: storage.Template{Name: "call-friend", Title: "Call a friend", Difficulty: string(DifficultyEasy), Skill: string(SkillSocial)}},
		{Template: storage.Template{Name: "deep-work", Title: "Two hours of deep work", Difficulty: string(DifficultyMedium), Skill: string(SkillProfessional), IsHabit: true}, MinLevel: LevelHabitTemplates},
		{Template: storage.Template{Name: "sketch", Title: "Sketch for 30 minutes", Difficulty: string(DifficultyMedium), Skill: string(SkillCreative), IsHabit: true}, MinLevel: LevelHabitTemplates},
		{Template: storage.Template{Name: "run-10k", Title: "Run 10k", Difficulty: string(DifficultyHard), Skill: string(SkillPhysical)}, MinLevel: LevelHardTemplates},
		{Template: storage.Template{Name: "ship-side-project", Title: "Ship a side project", Difficulty: string(DifficultyEpic), Skill: string(SkillProfessional)}, MinLevel: LevelEpicTemplates},
	}
}

func normalizeTemplateName(name string) (string, error) {
	n := strings.TrimSpace(strings.ToLower(name))
	if n == "" {
		return "", fmt.Errorf("template name is required")
	}
	return n, nil
}

// CanUseTemplate returns a GateError when level is below the template's
// unlock level.
func CanUseTemplate(def TemplateDef, level int) error {
	if level < def.MinLevel {
		return GateError{Feature: def.Name, RequiredLevel: def.MinLevel}
	}
	return nil
}

// ListTemplates returns built-in templates (with their lock state at the
// current level) followed by the user's templates sorted by name.
func (s *Store) ListTemplates() []TemplateDef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.templatesLocked()
}

func (s *Store) templatesLocked() []TemplateDef {
	level := s.state.profile.Level
	out := builtinTemplates()
	for i := range out {
		out[i].Source = TemplateBuiltin
		out[i].Locked = CanUseTemplate(out[i], level) != nil
	}
	user := append([]storage.Template(nil), s.state.profile.Templates...)
	sort.Slice(user, func(i, j int) bool { return user[i].Name < user[j].Name })
	for _, t := range user {
		out = append(out, TemplateDef{Template: t, Source: TemplateUser})
	}
	return out
}

// SaveTemplate stores a user template, replacing one with the same name.
// Built-in names are reserved.
func (s *Store) SaveTemplate(ctx context.Context, t storage.Template) (*storage.Template, error) {
	name, err := normalizeTemplateName(t.Name)
	if err != nil {
		return nil, err
	}
	title, err := normalizeTitle(t.Title)
	if err != nil {
		return nil, err
	}
	for _, b := range builtinTemplates() {
		if b.Name == name {
			return nil, fmt.Errorf("template name %q is reserved", name)
		}
	}
	t.Name = name
	t.Title = title
	t.Description = strings.TrimSpace(t.Description)
	t.Difficulty = string(parseStoredDifficulty(t.Difficulty))
	t.Skill = string(parseStoredSkill(t.Skill))

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.begin()
	p := &c.next.profile
	replaced := false
	for i := range p.Templates {
		if p.Templates[i].Name == name {
			p.Templates[i] = t
			replaced = true
			break
		}
	}
	if !replaced {
		p.Templates = append(p.Templates, t)
	}
	if _, err := s.commit(ctx, c); err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteTemplate removes a user template. It reports false when no user
// template has that name.
func (s *Store) DeleteTemplate(ctx context.Context, name string) (bool, error) {
	n, err := normalizeTemplateName(name)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.begin()
	p := &c.next.profile
	for i := range p.Templates {
		if p.Templates[i].Name != n {
			continue
		}
		p.Templates = append(p.Templates[:i], p.Templates[i+1:]...)
		if _, err := s.commit(ctx, c); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// AddTaskFromTemplate instantiates a standalone task from a template. Locked
// built-in templates return a GateError.
func (s *Store) AddTaskFromTemplate(ctx context.Context, name string) (*storage.Task, error) {
	n, err := normalizeTemplateName(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	var def *TemplateDef
	defs := s.templatesLocked()
	for i := range defs {
		if defs[i].Name == n {
			def = &defs[i]
			break
		}
	}
	level := s.state.profile.Level
	s.mu.Unlock()

	if def == nil {
		return nil, fmt.Errorf("unknown template: %s", n)
	}
	if err := CanUseTemplate(*def, level); err != nil {
		return nil, err
	}
	return s.AddTask(ctx, TaskInput{
		Title:       def.Title,
		Description: def.Description,
		Difficulty:  parseStoredDifficulty(def.Difficulty),
		Skill:       parseStoredSkill(def.Skill),
		IsHabit:     def.IsHabit,
	})
}
