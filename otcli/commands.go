package main

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/npillmayer/foundry"
	"github.com/npillmayer/foundry/ot"
	"github.com/npillmayer/foundry/otquery"
	"github.com/pterm/pterm"
	"golang.org/x/text/unicode/runenames"
)

func quitOp(intp *Intp, op *Op) (bool, error) {
	return true, nil
}

func tablesOp(intp *Intp, op *Op) (bool, error) {
	otf := intp.font.Container()
	data := [][]string{{"Tag", "Size", "Wrapper"}}
	for _, tag := range otf.TableTags() {
		w, err := intp.font.Table(tag)
		wrapper := "-"
		if err == nil {
			wrapper = strings.TrimPrefix(fmt.Sprintf("%T", w), "*tables.")
		}
		data = append(data, []string{tag.String(), strconv.Itoa(len(otf.Table(tag).Binary())), wrapper})
	}
	return false, pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func tableOp(intp *Intp, op *Op) (bool, error) {
	if op.noArg() {
		return false, intp.checkTable()
	}
	tag := ot.T(op.arg)
	if _, err := intp.font.Table(tag); err != nil {
		return false, err
	}
	intp.table = tag
	tracer().Infof("setting table: %v", tag)
	return false, nil
}

func getOp(intp *Intp, op *Op) (bool, error) {
	if err := intp.checkTable(); err != nil {
		return false, err
	}
	v, err := ot.FieldValue(intp.font.Container().Table(intp.table), op.arg)
	if err != nil {
		return false, err
	}
	pterm.Printf("%s.%s = %d (0x%x)\n", intp.table, op.arg, v, v)
	return false, nil
}

func setOp(intp *Intp, op *Op) (bool, error) {
	if err := intp.checkTable(); err != nil {
		return false, err
	}
	v, err := strconv.ParseInt(op.val, 0, 64)
	if err != nil {
		return false, fmt.Errorf("set %s: value %q is not a number", op.arg, op.val)
	}
	if err := ot.SetFieldValue(intp.font.Container().Table(intp.table), op.arg, uint64(v)); err != nil {
		return false, err
	}
	pterm.Printf("%s.%s := %d\n", intp.table, op.arg, v)
	return false, nil
}

func flagsOp(intp *Intp, op *Op) (bool, error) {
	pterm.Println(intp.font.Flags().String())
	return false, nil
}

// styleOp sets a style flag, e.g. "style:bold:on".
func styleOp(intp *Intp, op *Op) (bool, error) {
	on, err := strconv.ParseBool(strings.NewReplacer("on", "true", "off", "false").Replace(op.val))
	if err != nil {
		return false, fmt.Errorf("style %s: expected on or off, have %q", op.arg, op.val)
	}
	flags := intp.font.Flags()
	switch op.arg {
	case "bold":
		err = flags.SetBold(on)
	case "italic":
		err = flags.SetItalic(on)
	case "oblique":
		err = flags.SetOblique(on)
	case "regular":
		err = flags.SetRegular(on)
	default:
		err = fmt.Errorf("unknown style %q", op.arg)
	}
	if err == nil {
		pterm.Println(flags.String())
	}
	return false, err
}

func glyphOp(intp *Intp, op *Op) (bool, error) {
	otf := intp.font.Container()
	gid, ok := otquery.GlyphIndexByName(otf, op.arg)
	if !ok {
		return false, fmt.Errorf("glyph %q: %w", op.arg, foundry.ErrMissingGlyph)
	}
	b, err := intp.font.GlyphBounds(op.arg)
	if err != nil {
		return false, err
	}
	m := otquery.GlyphMetrics(otf, gid)
	pterm.Printf("glyph %d %q: advance=%d bounds=(%g,%g)-(%g,%g)\n",
		gid, op.arg, m.Advance, b.XMin, b.YMin, b.XMax, b.YMax)
	return false, nil
}

// cmapOp prints the mapping of a character ("cmap:H" or "cmap:U+0048"), or
// the size of the character map.
func cmapOp(intp *Intp, op *Op) (bool, error) {
	m := otquery.BestCMap(intp.font.Container())
	if op.noArg() {
		pterm.Printf("cmap maps %d characters\n", len(m))
		return false, nil
	}
	r, err := parseCodepoint(op.arg)
	if err != nil {
		return false, err
	}
	gid, ok := m[r]
	if !ok {
		pterm.Printf("U+%04X %s is not mapped\n", r, runenames.Name(r))
		return false, nil
	}
	names := otquery.GlyphNames(intp.font.Container())
	pterm.Printf("U+%04X %s => glyph %d %s\n", r, runenames.Name(r), gid, names[gid])
	return false, nil
}

func parseCodepoint(s string) (rune, error) {
	if u, ok := strings.CutPrefix(strings.ToUpper(s), "U+"); ok {
		v, err := strconv.ParseUint(u, 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid code-point %q", s)
		}
		return rune(v), nil
	}
	if r, size := utf8.DecodeRuneInString(s); size == len(s) && r != utf8.RuneError {
		return r, nil
	}
	return 0, fmt.Errorf("invalid character %q", s)
}

func italicOp(intp *Intp, op *Op) (bool, error) {
	minSlant := foundry.DefaultMinSlant
	if !op.noArg() {
		var err error
		if minSlant, err = strconv.ParseFloat(op.arg, 64); err != nil {
			return false, fmt.Errorf("italic: invalid minimum slant %q", op.arg)
		}
	}
	angle, err := intp.font.CalcItalicAngle(minSlant)
	if err != nil {
		return false, err
	}
	post, err := intp.font.Post()
	if err != nil {
		return false, err
	}
	pterm.Printf("measured italic angle %.2f, post.italicAngle %.2f\n", angle, post.ItalicAngle())
	return false, nil
}

func saveOp(intp *Intp, op *Op) (bool, error) {
	path := op.arg
	if path == "" {
		var err error
		if path, err = intp.font.FilePath(foundry.PathOptions{}); err != nil {
			return false, err
		}
	}
	if err := intp.font.Save(path, ot.None[bool]()); err != nil {
		return false, err
	}
	pterm.Info.Printf("saved font to %s\n", path)
	return false, nil
}
