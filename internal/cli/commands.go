package cli

import (
	"fmt"

	"couple-checklist/internal/calendar"
)

type SeedCmd struct{}

func (c *SeedCmd) Run(ctx *Context) error {
	if err := ctx.App.Seed(ctx.Ctx); err != nil {
		return err
	}
	users, err := ctx.App.Users.List(ctx.Ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		fmt.Fprintf(ctx.Out, "%d\t%s %s\n", u.ID, u.AvatarEmoji, u.Name)
	}
	return nil
}

type StreakCmd struct {
	User uint `required:"" help:"User id."`
}

func (c *StreakCmd) Run(ctx *Context) error {
	today := calendar.Today(ctx.App.Now(), ctx.App.Location())
	streak, err := ctx.App.Streaks.GetStreak(ctx.Ctx, c.User, today)
	if err != nil {
		return err
	}
	last := "never"
	if streak.LastActivity != nil {
		last = *streak.LastActivity
	}
	fmt.Fprintf(ctx.Out, "current: %d\nbest: %d\nlast activity: %s\n", streak.CurrentStreak, streak.BestStreak, last)
	return nil
}

type EvaluateCmd struct {
	User uint `required:"" help:"User id."`
}

func (c *EvaluateCmd) Run(ctx *Context) error {
	if err := ctx.App.Seed(ctx.Ctx); err != nil {
		return err
	}
	unlocked, err := ctx.App.Achievements.Evaluate(ctx.Ctx, c.User, ctx.App.Now())
	if err != nil {
		return err
	}
	if len(unlocked) == 0 {
		fmt.Fprintln(ctx.Out, "No new achievements.")
		return nil
	}
	for _, a := range unlocked {
		fmt.Fprintf(ctx.Out, "%s %s: %s\n", a.Icon, a.Name, a.Description)
	}
	return nil
}
