package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/example/sketchstory/internal/appstate"
	"github.com/example/sketchstory/internal/canvas"
)

type commandList []string

func (c *commandList) String() string {
	return strings.Join(*c, ";")
}

func (c *commandList) Set(value string) error {
	*c = append(*c, value)
	return nil
}

// interactiveCmd drives a headless session from text commands.
type interactiveCmd struct {
	*root
	fs *flag.FlagSet

	execs  commandList
	width  int
	height int

	stdin   io.Reader
	session *appstate.Session
}

func (i *interactiveCmd) FlagSet() *flag.FlagSet {
	return i.fs
}

func parseInteractiveCmd(args []string, r *root) (*interactiveCmd, error) {
	cfg := r.cfg()
	fs := flag.NewFlagSet("interactive", flag.ExitOnError)
	i := &interactiveCmd{root: r, fs: fs, stdin: os.Stdin}
	fs.Usage = usageFunc(i)
	fs.Var(&i.execs, "e", "execute interactive command in immediate mode (may be specified multiple times)")
	fs.IntVar(&i.width, "width", cfg.Canvas.Width, "canvas width in pixels")
	fs.IntVar(&i.height, "height", cfg.Canvas.Height, "canvas height in pixels")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: i}
	}
	return i, nil
}

func (i *interactiveCmd) Run() error {
	if i.session == nil {
		i.session = i.newSession(i.width, i.height)
	}
	defer i.session.Close()

	if len(i.execs) > 0 {
		for _, line := range i.execs {
			done, err := i.executeLine(line)
			if err != nil {
				return err
			}
			if done {
				break
			}
		}
		return nil
	}

	out := i.out()
	fmt.Fprintln(out, "Enter commands (type 'help' for a list, 'exit' to quit)")
	scanner := bufio.NewScanner(i.stdin)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		done, err := i.executeLine(scanner.Text())
		if err != nil {
			fmt.Fprintln(i.errOut(), err)
		}
		if done {
			break
		}
	}
	return scanner.Err()
}

const interactiveHelp = `commands:
  tool brush|eraser|fill     select a tool
  color <name|#hex>          set the drawing color
  width <px>                 set the stroke width
  stroke x y x y ...         draw a stroke through the points
  fill x y                   flood fill at a point
  strokes                    list committed strokes
  erase-stroke <n>           remove stroke n
  erase-at x y               remove the topmost stroke under a point
  undo | redo | clear        edit history
  grid on|off                toggle grid guides
  capture                    keep the drawing as the next panel
  panels                     list captured panels
  remove <n>                 remove panel n
  replace <n>                capture the drawing into slot n
  move <from> <to>           reorder panels
  copy <n>                   copy panel n to the clipboard
  paste                      use the clipboard picture as background
  story                      ask the story service for a story
  save                       write the storyboard PDF and contact sheet
  export <file.png>          write the current drawing
  status                     query the story service
  exit`

// executeLine runs one command and reports whether the session should end.
func (i *interactiveCmd) executeLine(line string) (bool, error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false, nil
	}
	sess := i.session
	name, rest := strings.ToLower(args[0]), args[1:]
	switch name {
	case "exit", "quit":
		return true, nil
	case "help":
		fmt.Fprintln(i.out(), interactiveHelp)
	case "tool":
		if len(rest) != 1 {
			return false, fmt.Errorf("tool requires a name")
		}
		t, err := appstate.ParseTool(rest[0])
		if err != nil {
			return false, err
		}
		sess.SelectTool(t)
	case "color":
		if len(rest) != 1 {
			return false, fmt.Errorf("color requires a value")
		}
		c, err := appstate.LookupColor(rest[0])
		if err != nil {
			return false, err
		}
		sess.SetColor(c)
	case "width":
		v, err := expectInts(rest, 1, name)
		if err != nil {
			return false, err
		}
		sess.SetWidth(float32(v[0]))
	case "stroke":
		if len(rest) < 2 || len(rest)%2 != 0 {
			return false, fmt.Errorf("stroke requires x y pairs")
		}
		v, err := expectInts(rest, len(rest), name)
		if err != nil {
			return false, err
		}
		pts := make([]canvas.Point, 0, len(v)/2)
		for j := 0; j < len(v); j += 2 {
			pts = append(pts, canvas.Point{X: float32(v[j]), Y: float32(v[j+1])})
		}
		i.report(sess.PointerDown(pts[0]))
		for _, p := range pts[1:] {
			sess.PointerMove(p)
		}
		sess.PointerUp(pts[len(pts)-1])
	case "fill":
		v, err := expectInts(rest, 2, name)
		if err != nil {
			return false, err
		}
		prev := sess.Tool().Tool
		sess.SelectTool(appstate.ToolFill)
		i.report(sess.PointerDown(canvas.Point{X: float32(v[0]), Y: float32(v[1])}))
		sess.SelectTool(prev)
	case "strokes":
		strokes := sess.Surface().Strokes()
		if len(strokes) == 0 {
			fmt.Fprintln(i.out(), "no strokes")
			break
		}
		for n, st := range strokes {
			fmt.Fprintf(i.out(), "%d: %d points, %gpx, bounds %v\n", n+1, len(st.Points), st.Width, st.Bounds())
		}
	case "erase-stroke":
		v, err := expectInts(rest, 1, name)
		if err != nil {
			return false, err
		}
		strokes := sess.Surface().Strokes()
		if v[0] < 1 || v[0] > len(strokes) || !sess.RemoveStroke(strokes[v[0]-1].ID) {
			return false, fmt.Errorf("no stroke %d", v[0])
		}
	case "erase-at":
		v, err := expectInts(rest, 2, name)
		if err != nil {
			return false, err
		}
		i.report(sess.EraseStrokeAt(canvas.Point{X: float32(v[0]), Y: float32(v[1])}))
	case "replace":
		v, err := expectInts(rest, 1, name)
		if err != nil {
			return false, err
		}
		i.report(sess.ReplacePanel(v[0] - 1))
	case "undo":
		i.report(sess.Undo())
	case "redo":
		i.report(sess.Redo())
	case "clear":
		sess.Clear()
	case "grid":
		if len(rest) != 1 || (rest[0] != "on" && rest[0] != "off") {
			return false, fmt.Errorf("grid requires on or off")
		}
		sess.Grid().SetEnabled(rest[0] == "on")
	case "capture":
		i.report(sess.CapturePanel())
	case "panels":
		ps := sess.Panels()
		if len(ps) == 0 {
			fmt.Fprintln(i.out(), "no panels captured")
			break
		}
		for n, p := range ps {
			fmt.Fprintf(i.out(), "%d: %s (%d bytes)\n", n+1, p.ID, len(p.Encoded()))
		}
	case "remove", "copy":
		v, err := expectInts(rest, 1, name)
		if err != nil {
			return false, err
		}
		if name == "remove" {
			i.report(sess.RemovePanel(v[0] - 1))
		} else {
			i.report(sess.CopyPanel(v[0] - 1))
		}
	case "move":
		v, err := expectInts(rest, 2, name)
		if err != nil {
			return false, err
		}
		i.report(sess.ReorderPanel(v[0]-1, v[1]-1))
	case "paste":
		i.report(sess.PasteBackground())
	case "story":
		st, msg := sess.CreateStory(context.Background())
		i.report(msg)
		if st != nil {
			printStory(i.out(), st)
		}
	case "save":
		paths, msg := sess.SaveStory()
		i.report(msg)
		for _, p := range paths {
			fmt.Fprintln(i.out(), p)
		}
	case "export":
		if len(rest) != 1 {
			return false, fmt.Errorf("export requires a file name")
		}
		return false, writePNG(rest[0], sess.Surface().Pixels(sess.Surface().Bounds()))
	case "status":
		return false, printStatus(i.out(), i.storyClient())
	default:
		return false, fmt.Errorf("unknown command %q (try 'help')", name)
	}
	return false, nil
}

func (i *interactiveCmd) report(m appstate.Message) {
	if m.IsZero() {
		return
	}
	if m.Level == appstate.LevelInfo {
		fmt.Fprintln(i.out(), m.Text)
		return
	}
	fmt.Fprintf(i.errOut(), "%s: %s\n", m.Level, m.Text)
}

func expectInts(args []string, n int, name string) ([]int, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s requires %d numeric arguments", name, n)
	}
	out := make([]int, n)
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid number %q", name, a)
		}
		out[i] = v
	}
	return out, nil
}
