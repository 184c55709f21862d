package main

import (
	"github.com/dshills/toolz/internal/config"
)

// ShowConfCmd prints the effective configuration.
type ShowConfCmd struct {
	Format string `help:"Output format." enum:"toml,yaml" default:"toml"`
}

// Run executes the config command.
func (c *ShowConfCmd) Run(app *appContext) error {
	data, err := config.Encode(app.cfg, config.Format(c.Format))
	if err != nil {
		return err
	}
	_, err = app.stdio.out.Write(data)
	return err
}
