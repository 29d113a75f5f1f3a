// Package cli holds the couplecheck subcommands.
package cli

import (
	"context"
	"io"

	"couple-checklist/internal/app"
)

type Context struct {
	Ctx context.Context
	App *app.App
	Out io.Writer
}

type ServeCmd struct{}

func (c *ServeCmd) Run(ctx *Context) error {
	if err := ctx.App.Seed(ctx.Ctx); err != nil {
		return err
	}
	return ctx.App.Run(ctx.Ctx)
}
