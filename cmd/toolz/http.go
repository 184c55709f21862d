package main

import (
	"fmt"

	"github.com/dshills/toolz/internal/codec"
	"github.com/dshills/toolz/internal/jsonv"
)

// GetCmd fetches JSON from a URL.
type GetCmd struct {
	URL   string `arg:"" help:"URL to fetch."`
	Query string `help:"Path to extract from the response, such as items.0.name." short:"q"`
	Save  string `help:"Save the response to this file instead of printing it." short:"s" type:"path"`
}

// Run executes the get command.
func (c *GetCmd) Run(app *appContext) error {
	v, err := app.restClient().GetJSON(app.ctx, c.URL)
	if err != nil {
		return err
	}

	if c.Query != "" {
		found, ok := v.Query(c.Query)
		if !ok {
			return fmt.Errorf("path %q not found in response", c.Query)
		}
		v = found
	}

	if c.Save != "" {
		path, ok := codec.Save(v, c.Save)
		if !ok {
			return fmt.Errorf("could not save response to %s", c.Save)
		}
		fmt.Fprintf(app.stdio.err, "Saved response to %s\n", path)
		return nil
	}
	return app.printValue(v)
}

// PostCmd sends a JSON file to a URL.
type PostCmd struct {
	URL  string `arg:"" help:"URL to post to."`
	File string `arg:"" help:"JSON file to send." type:"existingfile"`
}

// Run executes the post command.
func (c *PostCmd) Run(app *appContext) error {
	v, ok := codec.Load[jsonv.Value](c.File)
	if !ok {
		return fmt.Errorf("could not load JSON from %s", c.File)
	}
	if err := app.restClient().Post(app.ctx, c.URL, v); err != nil {
		return err
	}
	fmt.Fprintf(app.stdio.err, "Posted %s to %s\n", c.File, c.URL)
	return nil
}
