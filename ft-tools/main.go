/*
Command ft-tools applies font operations to a batch of font files.

Fonts are processed concurrently, each with its own foundry.Font. Fonts which
have been changed are saved next to the input file (or to --output-dir), with
"#1", "#2", … added to the name if a file would be overwritten.

	ft-tools correct --suffix=-fixed fonts/*.otf
	ft-tools convert ttf --max-err=0.5 Sans-Regular.otf
	ft-tools fix-italic --oblique Sans-Italic.ttf
	ft-tools proof --output=proof.png Sans-Regular.ttf H I

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/npillmayer/foundry"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/sirupsen/logrus"
)

// tracer traces with key 'font.foundry'
func tracer() tracing.Trace {
	return tracing.Select("font.foundry")
}

// Globals are the flags shared by all commands.
type Globals struct {
	Trace           string `short:"t" enum:"Debug,Info,Error" default:"Error" help:"Trace level of the font packages."`
	Jobs            int    `short:"j" default:"4" help:"Number of fonts processed concurrently."`
	OutputDir       string `short:"o" type:"path" help:"Directory for output files (default: next to the input file)."`
	Overwrite       bool   `help:"Overwrite existing files."`
	Suffix          string `short:"s" help:"Suffix appended to output file names, e.g. '-fixed'."`
	TempDir         string `type:"existingdir" help:"Directory for temporary files."`
	RecalcTimestamp bool   `help:"Set the modification time of saved fonts."`
	Reorder         string `enum:"deps,tag,keep" default:"deps" help:"Order of table data in saved fonts: by dependency, by tag or as in the source."`
}

var cli struct {
	Globals

	Info      infoCmd      `cmd:"" help:"Print information about fonts."`
	Convert   convertCmd   `cmd:"" help:"Convert fonts to another outline or container format."`
	Correct   correctCmd   `cmd:"" help:"Remove tiny contours and overlaps, correct contour directions."`
	Scale     scaleCmd     `cmd:"" help:"Scale fonts to a number of units per em."`
	FixItalic fixItalicCmd `cmd:"" name:"fix-italic" help:"Measure the italic angle and fix the values depending on it."`
	Hint      hintCmd      `cmd:"" help:"Autohint TrueType fonts with ttfautohint."`
	Dehint    dehintCmd    `cmd:"" help:"Remove hinting."`
	Rename    renameCmd    `cmd:"" help:"Rename glyphs, or give them their production names."`
	Desubr    desubrCmd    `cmd:"" help:"Write PostScript outlines without subroutines."`
	Proof     proofCmd     `cmd:"" help:"Render glyphs of a font to a PNG image."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("ft-tools"),
		kong.Description("Batch operations on OpenType fonts."),
		kong.UsageOnError(),
		kong.BindTo(context.Background(), (*context.Context)(nil)),
	)
	if err := setupTracing(cli.Trace); err != nil {
		fmt.Fprintf(os.Stderr, "ft-tools: %v\n", err)
		os.Exit(1)
	}
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	ctx.FatalIfErrorf(ctx.Run(&cli.Globals))
}

// setupTracing directs the traces of the font packages to the Go logger.
func setupTracing(level string) error {
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":     "go",
		"trace.font.foundry":  level,
		"trace.font.tables":   level,
		"trace.font.outline":  level,
		"trace.font.cff":      level,
		"trace.font.opentype": level,
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		return fmt.Errorf("configuring tracing: %w", err)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	return nil
}

// config returns the font options selected by the global flags.
func (g *Globals) config() testconfig.Conf {
	conf := testconfig.Conf{
		foundry.ConfRecalcTimestamp: g.RecalcTimestamp,
	}
	if g.TempDir != "" {
		conf[foundry.ConfTempDir] = g.TempDir
	}
	return conf
}
