package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/npillmayer/foundry"
	"github.com/npillmayer/foundry/otquery"
	"github.com/npillmayer/foundry/outline"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/runenames"
)

// --- info ------------------------------------------------------------------

type infoCmd struct {
	Cmap  bool     `short:"c" help:"List the character map, with Unicode character names."`
	Fonts []string `arg:"" type:"existingfile" help:"Font files."`
}

func (c *infoCmd) Run(g *Globals) error {
	for _, path := range c.Fonts {
		f, err := foundry.NewFont(path, foundry.FromConfig(g.config()))
		if err != nil {
			return err
		}
		printInfo(f, c.Cmap)
		f.Close()
	}
	return nil
}

func printInfo(f *foundry.Font, cmap bool) {
	otf := f.Container()
	fmt.Printf("Path: %s\n", f.File())
	fmt.Printf("Type: %s\n", otquery.FontType(otf))
	names := otquery.NameInfo(otf)
	for _, key := range []string{"family", "subfamily", "full", "postscript", "version"} {
		if v := names[key]; v != "" {
			fmt.Printf("%s: %s\n", strings.ToUpper(key[:1])+key[1:], v)
		}
	}
	if head, err := f.Head(); err == nil {
		fmt.Printf("Units per em: %d\n", head.UnitsPerEm())
	}
	fmt.Printf("Glyphs: %d\n", otf.NumGlyphs())
	fmt.Printf("Style: %s\n", f.Flags())
	if angle, err := f.CalcItalicAngle(foundry.DefaultMinSlant); err == nil {
		fmt.Printf("Italic angle: %.2f\n", angle)
	}
	if axes, _ := f.Axes(true); len(axes) > 0 {
		for _, a := range axes {
			fmt.Printf("Axis %s: %g … %g … %g\n", a.Tag, a.Minimum, a.Default, a.Maximum)
		}
	}
	tags := otf.TableTags()
	fmt.Printf("Tables (%d):", len(tags))
	for _, tag := range tags {
		fmt.Printf(" %s", tag)
	}
	fmt.Println()
	if !cmap {
		return
	}
	glyphNames := otquery.GlyphNames(otf)
	m := otquery.BestCMap(otf)
	runes := make([]rune, 0, len(m))
	for r := range m {
		runes = append(runes, r)
	}
	slices.Sort(runes)
	for _, r := range runes {
		gid := int(m[r])
		name := ""
		if gid < len(glyphNames) {
			name = glyphNames[gid]
		}
		fmt.Printf("U+%04X  %-40s  %5d %s\n", r, runenames.Name(r), gid, name)
	}
}

// --- convert ---------------------------------------------------------------

type convertCmd struct {
	To              string   `arg:"" enum:"ttf,otf,woff,woff2,sfnt" help:"Target format: ttf, otf, woff, woff2 or sfnt."`
	MaxErr          float64  `default:"1.0" help:"Maximum error of quadratic approximation (ttf)."`
	Reverse         bool     `default:"true" negatable:"" help:"Reverse contour direction (ttf)."`
	Tolerance       float64  `default:"0" help:"Lines shorter than this are dropped (otf)."`
	CorrectContours bool     `default:"true" negatable:"" help:"Remove tiny contours and overlaps, fix directions (otf)."`
	Fonts           []string `arg:"" type:"existingfile" help:"Font files."`
}

func (c *convertCmd) Run(ctx context.Context, g *Globals) error {
	return g.run(ctx, "convert", c.Fonts, func(_ context.Context, f *foundry.Font, _ *logrus.Entry) (bool, error) {
		var err error
		switch c.To {
		case "ttf":
			err = f.ToTTF(c.MaxErr, c.Reverse)
		case "otf":
			err = f.ToOTF(c.Tolerance, c.CorrectContours)
		case "woff":
			err = f.ToWOFF()
		case "woff2":
			err = f.ToWOFF2()
		case "sfnt":
			err = f.ToSFNT()
		}
		return err == nil, err
	})
}

// --- correct ---------------------------------------------------------------

type correctCmd struct {
	MinArea      float64  `default:"25" help:"Contours with a smaller bounding box area are removed, 0 keeps them."`
	KeepOverlaps bool     `help:"Do not merge overlapping contours."`
	KeepHinting  bool     `help:"Do not remove hinting from corrected fonts."`
	Fonts        []string `arg:"" type:"existingfile" help:"Font files."`
}

func (c *correctCmd) Run(ctx context.Context, g *Globals) error {
	opts := foundry.CorrectOptions{MinArea: c.MinArea, KeepOverlaps: c.KeepOverlaps, KeepHinting: c.KeepHinting}
	return g.run(ctx, "correct", c.Fonts, func(_ context.Context, f *foundry.Font, log *logrus.Entry) (bool, error) {
		changed, err := f.CorrectContours(opts)
		if err != nil {
			return false, err
		}
		if len(changed) > 0 {
			log.WithField("glyphs", strings.Join(changed, " ")).Infof("%d glyphs corrected", len(changed))
		}
		return len(changed) > 0, nil
	})
}

// --- scale -----------------------------------------------------------------

type scaleCmd struct {
	UPM   int      `arg:"" name:"upm" help:"Target units per em (16…16384)."`
	Fonts []string `arg:"" type:"existingfile" help:"Font files."`
}

func (c *scaleCmd) Run(ctx context.Context, g *Globals) error {
	return g.run(ctx, "scale", c.Fonts, func(_ context.Context, f *foundry.Font, _ *logrus.Entry) (bool, error) {
		head, err := f.Head()
		if err != nil {
			return false, err
		}
		if int(head.UnitsPerEm()) == c.UPM {
			return false, nil
		}
		return true, f.ScaleUPM(c.UPM)
	})
}

// --- fix-italic ------------------------------------------------------------

type fixItalicCmd struct {
	MinSlant float64  `default:"2.0" help:"Slants below this angle count as upright."`
	Italic   bool     `default:"true" negatable:"" help:"Set the italic bits of slanted fonts."`
	Oblique  bool     `help:"Set the oblique bit of slanted fonts."`
	Fonts    []string `arg:"" type:"existingfile" help:"Font files."`
}

func (c *fixItalicCmd) Run(ctx context.Context, g *Globals) error {
	return g.run(ctx, "fix-italic", c.Fonts, func(_ context.Context, f *foundry.Font, log *logrus.Entry) (bool, error) {
		results, err := f.FixItalicAngle(c.MinSlant, c.Italic, c.Oblique)
		if err != nil {
			return false, err
		}
		changed := false
		for check, r := range results {
			if !r.Pass {
				log.WithFields(logrus.Fields{"old": r.Old, "new": r.New}).Info(check)
				changed = true
			}
		}
		return changed, nil
	})
}

// --- hint / dehint ---------------------------------------------------------

type hintCmd struct {
	Ttfautohint string   `default:"ttfautohint" help:"Path of the ttfautohint program."`
	Args        []string `help:"Additional arguments for ttfautohint."`
	Fonts       []string `arg:"" type:"existingfile" help:"Font files."`
}

func (c *hintCmd) Run(ctx context.Context, g *Globals) error {
	hinter := outline.TTFAutohint{Path: c.Ttfautohint, Args: c.Args}
	return g.run(ctx, "hint", c.Fonts, func(ctx context.Context, f *foundry.Font, _ *logrus.Entry) (bool, error) {
		if err := f.TTAutohint(ctx); err != nil {
			return false, err
		}
		return true, nil
	}, foundry.WithHinter(hinter))
}

type dehintCmd struct {
	DropHintingData bool     `help:"Drop the hinting values of the CFF Private DICT, too."`
	Fonts           []string `arg:"" type:"existingfile" help:"Font files."`
}

func (c *dehintCmd) Run(ctx context.Context, g *Globals) error {
	return g.run(ctx, "dehint", c.Fonts, func(_ context.Context, f *foundry.Font, _ *logrus.Entry) (bool, error) {
		if f.IsTT() {
			return true, f.TTDehint()
		}
		return true, f.PSDehint(c.DropHintingData)
	})
}

// --- rename / desubr ------------------------------------------------------

type renameCmd struct {
	Map        map[string]string `short:"m" help:"Glyphs to rename, as old=new."`
	Production bool              `short:"p" help:"Give glyphs mapped to code-points their production names (uniXXXX)."`
	Fonts      []string          `arg:"" type:"existingfile" help:"Font files."`
}

func (c *renameCmd) Run(ctx context.Context, g *Globals) error {
	if len(c.Map) == 0 && !c.Production {
		return fmt.Errorf("nothing to rename: use --map or --production")
	}
	return g.run(ctx, "rename", c.Fonts, func(_ context.Context, f *foundry.Font, log *logrus.Entry) (bool, error) {
		var renamed []foundry.RenamedGlyph
		if len(c.Map) > 0 {
			done, err := f.RenameGlyphs(c.Map)
			if err != nil {
				return false, err
			}
			renamed = append(renamed, done...)
		}
		if c.Production {
			done, err := f.SetProductionNames()
			if err != nil {
				return false, err
			}
			renamed = append(renamed, done...)
		}
		for _, r := range renamed {
			log.WithField("new", r.New).Debug(r.Old)
		}
		return len(renamed) > 0, nil
	})
}

type desubrCmd struct {
	Fonts []string `arg:"" type:"existingfile" help:"Font files."`
}

func (c *desubrCmd) Run(ctx context.Context, g *Globals) error {
	return g.run(ctx, "desubr", c.Fonts, func(_ context.Context, f *foundry.Font, _ *logrus.Entry) (bool, error) {
		return true, f.PSDesubroutinize()
	})
}

// --- proof -----------------------------------------------------------------

type proofCmd struct {
	Output     string   `default:"ft-tools-proof.png" help:"Output PNG file."`
	PPEM       int      `short:"p" name:"ppem" default:"96" help:"Render scale in pixels per em."`
	Columns    int      `default:"8" help:"Glyphs per row."`
	ShowBBoxes bool     `short:"B" help:"Draw glyph bounding boxes."`
	Font       string   `arg:"" type:"existingfile" help:"Font file."`
	Glyphs     []string `arg:"" optional:"" help:"Glyph names (default: all glyphs)."`
}

func (c *proofCmd) Run(g *Globals) error {
	f, err := foundry.NewFont(c.Font, foundry.FromConfig(g.config()))
	if err != nil {
		return err
	}
	defer f.Close()
	glyphs := c.Glyphs
	if len(glyphs) == 0 {
		glyphs = otquery.GlyphNames(f.Container())
	}
	out, err := os.Create(c.Output)
	if err != nil {
		return err
	}
	p := proof{PPEM: c.PPEM, Columns: c.Columns, ShowBBoxes: c.ShowBBoxes}
	if err := p.Render(out, f, glyphs); err != nil {
		out.Close()
		return err
	}
	fmt.Printf("wrote %s (glyphs=%d)\n", c.Output, len(glyphs))
	return out.Close()
}
