/*
Command otcli is an interactive shell for inspecting and editing a font.

	otcli -font Sans-Regular.ttf
	ot > tables
	ot > table:OS/2 get:UsWeightClass
	ot > set:UsWeightClass:600 save:Sans-Semibold.ttf

Commands may be chained on a line, separated by blanks. Arguments follow
a command after colons.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/foundry"
	"github.com/npillmayer/foundry/ot"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'font.foundry'
func tracer() tracing.Trace {
	return tracing.Select("font.foundry")
}

func main() {
	initDisplay()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":    "go",
		"trace.font.foundry": "Info",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	fontname := flag.String("font", "", "Font to load")
	tempdir := flag.String("tempdir", "", "Directory for temporary files")
	flag.Parse()
	tracer().SetTraceLevel(tracing.LevelError) // will set the correct level later
	pterm.Info.Println("Welcome to the font shell")
	//
	// set up REPL
	repl, err := readline.New("ot > ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	defer repl.Close()
	intp := &Intp{repl: repl}
	//
	// load font to use
	fontConf := testconfig.Conf{}
	if *tempdir != "" {
		fontConf[foundry.ConfTempDir] = *tempdir
	}
	if err := intp.loadFont(*fontname, foundry.FromConfig(fontConf)); err != nil {
		tracer().Errorf(err.Error())
		os.Exit(4)
	}
	defer intp.font.Close()
	//
	// start receiving commands
	pterm.Info.Println("Quit with <ctrl>D")
	switch *tlevel {
	case "Debug":
		tracer().SetTraceLevel(tracing.LevelDebug)
	case "Info":
		tracer().SetTraceLevel(tracing.LevelInfo)
	case "Error":
		tracer().SetTraceLevel(tracing.LevelError)
	default:
		tracer().Errorf("Invalid trace level: %s", *tlevel)
		os.Exit(5)
	}
	tracer().Infof("Trace level is %s", *tlevel)
	intp.REPL() // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object
type Intp struct {
	font  *foundry.Font
	repl  *readline.Instance
	table ot.Tag // selected table, 0 if none
}

func (intp *Intp) String() string {
	if intp == nil || intp.table == 0 {
		return "()"
	}
	return fmt.Sprintf("( table=%s )", intp.table)
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		pterm.Println(intp.String())
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		cmd, err := parseCommand(line)
		if err != nil {
			pterm.Error.Println(err)
			continue
		}
		quit, err := intp.execute(cmd)
		if err != nil {
			pterm.Error.Println(err)
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

// Op is a single step of a command line.
type Op struct {
	code int
	arg  string
	val  string
}

// Command is a parsed command line.
type Command struct {
	op []Op
}

const (
	QUIT int = iota
	HELP
	TABLES
	TABLE
	GET
	SET
	FLAGS
	STYLE
	GLYPH
	CMAP
	ITALIC
	SAVE
)

var opMap = map[string]int{
	"quit":   QUIT,
	"help":   HELP,
	"tables": TABLES,
	"table":  TABLE,
	"get":    GET,
	"set":    SET,
	"flags":  FLAGS,
	"style":  STYLE,
	"glyph":  GLYPH,
	"cmap":   CMAP,
	"italic": ITALIC,
	"save":   SAVE,
}

var errUnknownCommand = errors.New("unknown command, try 'help'")

// parseCommand splits a line into steps of the form "op[:arg[:value]]".
func parseCommand(line string) (*Command, error) {
	cmd := &Command{}
	for _, step := range strings.Fields(line) {
		c := strings.SplitN(step, ":", 3) // e.g. "table:OS/2" or "set:UsWeightClass:600"
		code, ok := opMap[strings.ToLower(c[0])]
		if !ok {
			return nil, fmt.Errorf("%q: %w", c[0], errUnknownCommand)
		}
		op := Op{code: code, arg: getOptArg(c, 1), val: getOptArg(c, 2)}
		tracer().Debugf("parsed command: %v", c)
		cmd.op = append(cmd.op, op)
	}
	return cmd, nil
}

var commandFn = map[int]func(*Intp, *Op) (bool, error){
	QUIT:   quitOp,
	HELP:   helpOp,
	TABLES: tablesOp,
	TABLE:  tableOp,
	GET:    getOp,
	SET:    setOp,
	FLAGS:  flagsOp,
	STYLE:  styleOp,
	GLYPH:  glyphOp,
	CMAP:   cmapOp,
	ITALIC: italicOp,
	SAVE:   saveOp,
}

func (intp *Intp) execute(cmd *Command) (stop bool, err error) {
	for i := range cmd.op {
		f, ok := commandFn[cmd.op[i].code]
		if !ok {
			return false, fmt.Errorf("unknown command code: %d", cmd.op[i].code)
		}
		if stop, err = f(intp, &cmd.op[i]); err != nil || stop {
			return
		}
	}
	return
}

// --- Font Loading -----------------------------------------------------

func (intp *Intp) loadFont(fontname string, opts ...foundry.Option) (err error) {
	if fontname == "" {
		return errors.New("no font given, use -font")
	}
	if intp.font, err = foundry.NewFont(fontname, opts...); err != nil {
		return err
	}
	pterm.Printf("font tables: %v\n", intp.font.Container().TableTags())
	return nil
}

// ----------------------------------------------------------------------

var errNoTable = errors.New("no table set")

func (intp *Intp) checkTable() error {
	if intp.table == 0 {
		return errNoTable
	}
	return nil
}

func getOptArg(s []string, inx int) string {
	if len(s) > inx {
		return s[inx]
	}
	return ""
}

func (op *Op) noArg() bool {
	return op.arg == ""
}
