package main

import (
	"strings"

	"github.com/pterm/pterm"
)

func helpOp(intp *Intp, op *Op) (bool, error) {
	help(op.arg)
	return false, nil
}

var helpTopics = map[string]string{
	"tables": "tables                 list the tables of the font with their wrappers",
	"table":  "table:TAG              select a table for get and set, e.g. table:OS/2",
	"get":    "get:Field              print an integer field of the selected table, e.g. get:UsWeightClass",
	"set":    "set:Field:value        set an integer field of the selected table, e.g. set:FsType:0",
	"flags":  "flags                  print the style flags (bold, italic, oblique, regular)",
	"style":  "style:FLAG:on|off      set a style flag, keeping OS/2 and head in sync",
	"glyph":  "glyph:NAME             print the advance width and bounds of a glyph",
	"cmap":   "cmap[:CHAR]            print the glyph a character maps to, e.g. cmap:U+00A0",
	"italic": "italic[:MINSLANT]      measure the italic angle from the outline of 'H'",
	"save":   "save[:PATH]            save the font; without a path next to the original",
	"help":   "help[:COMMAND]         print help",
	"quit":   "quit                   leave the shell",
}

func help(topic string) {
	tracer().Infof("help %v", topic)
	t := strings.ToLower(topic)
	if text, ok := helpTopics[t]; ok {
		pterm.Info.Println(t)
		pterm.Println(text)
		return
	}
	pterm.Info.Println("Commands")
	for _, cmd := range []string{"tables", "table", "get", "set", "flags", "style",
		"glyph", "cmap", "italic", "save", "help", "quit"} {
		pterm.Println(helpTopics[cmd])
	}
}
