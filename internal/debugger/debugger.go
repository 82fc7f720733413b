// Package debugger provides an interactive, single-step terminal UI
// over the interpreter's Step primitive: it never reimplements
// bytecode dispatch, it just drives exec.Interpreter.Step one
// instruction at a time and renders the resulting frame and heap
// state.
package debugger

import (
	"fmt"

	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mabhi256/mjvm/internal/classfile"
	"github.com/mabhi256/mjvm/internal/exec"
	"github.com/mabhi256/mjvm/internal/runtime"
	"github.com/mabhi256/mjvm/utils"
)

const (
	historyLimit = 200
	chartWidth   = 40
	chartHeight  = 8
)

// tab identifies one of the debugger's side panels, cycled with
// tab/shift+tab the way jdiag's own dashboards cycled between views.
type tab int

const (
	tabInstructions tab = iota
	tabHeap
	maxTab = tabHeap
)

func (t tab) String() string {
	switch t {
	case tabInstructions:
		return "instructions"
	case tabHeap:
		return "heap"
	default:
		return "?"
	}
}

// Model is the bubbletea model driving one method's execution.
type Model struct {
	interp *exec.Interpreter
	cf     *classfile.ClassFile
	method *classfile.MethodInfo
	frame  *runtime.Frame
	code   []byte

	history []string
	running bool // true once 'c' (continue) is pressed
	done    bool
	err     error

	occupancy streamlinechart.Model
	width     int
	height    int

	activeTab tab
}

// New builds a debugger model ready to step through method's
// bytecode. It pushes the initial frame onto the interpreter's call
// stack itself, mirroring what ExecuteMethod does before entering its
// loop.
func New(interp *exec.Interpreter, cf *classfile.ClassFile, method *classfile.MethodInfo) (*Model, error) {
	if method.Code == nil {
		return nil, fmt.Errorf("method has no Code attribute to step through")
	}

	className, err := cf.Name()
	if err != nil {
		return nil, err
	}
	methodName, _ := cf.GetUTF8(method.NameIndex)
	descriptor, _ := cf.GetUTF8(method.DescriptorIndex)

	frame := runtime.NewFrame(className, methodName, descriptor, int(method.Code.MaxLocals), int(method.Code.MaxStack))
	interp.Stack.PushFrame(frame)

	chart := streamlinechart.New(chartWidth, chartHeight)

	m := &Model{
		interp:    interp,
		cf:        cf,
		method:    method,
		frame:     frame,
		code:      method.Code.Code,
		occupancy: chart,
		width:     80,
		height:    24,
	}
	interp.Sink = m
	return m, nil
}

// Observe records each interpreter diagnostic in the instruction
// history, so it shows up alongside the steps that produced it.
func (m *Model) Observe(d runtime.Diagnostic) {
	m.history = append(m.history, fmt.Sprintf("  [%s] %s", d.Severity, d.Message))
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "n", " ":
			m.stepOnce()
		case "c":
			m.running = true
			for m.running && !m.done && m.err == nil {
				m.stepOnce()
			}
		case "tab":
			m.activeTab = utils.GetNextEnum(m.activeTab, maxTab)
		case "shift+tab":
			m.activeTab = utils.GetPrevEnum(m.activeTab, maxTab)
		}
	}
	return m, nil
}

func (m *Model) stepOnce() {
	if m.done || m.err != nil {
		return
	}
	if m.frame.PC >= len(m.code) {
		m.done = true
		return
	}

	instr, returned, _, err := m.interp.Step(m.cf, m.code, m.frame)
	if err != nil {
		m.err = err
		m.done = true
		return
	}

	m.history = append(m.history, fmt.Sprintf("pc=%-4d %s", m.frame.PC, instr.Op))
	if len(m.history) > historyLimit {
		m.history = m.history[len(m.history)-historyLimit:]
	}

	m.occupancy.Push(float64(m.interp.Heap.ObjectCount()))
	m.occupancy.Draw()

	if returned {
		m.done = true
	}
}

func (m *Model) View() string {
	status := "running"
	statusColor := utils.GoodColor
	if m.err != nil {
		status = "error: " + m.err.Error()
		statusColor = utils.CriticalColor
	} else if m.done {
		status = "finished"
		statusColor = utils.MutedColor
	}

	header := utils.TitleStyle.Render(fmt.Sprintf("%s.%s%s", m.frame.ClassName, m.frame.MethodName, m.frame.Descriptor))
	statusLine := utils.CreateStatusIndicator("debugger", status, statusColor)
	tabBar := m.renderTabBar()

	var panel string
	switch m.activeTab {
	case tabHeap:
		panel = m.renderHeapTab()
	default:
		panel = m.renderInstructionsTab()
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		header,
		statusLine,
		"",
		tabBar,
		"",
		panel,
		"",
		utils.HelpBarStyle.Render("n/space step · c continue · tab/shift+tab switch view · q quit"),
	)

	return utils.BoxStyle.Render(body)
}

// renderTabBar renders one label per tab, styling the active one with
// TabActiveStyle and the rest with TabInactiveStyle.
func (m *Model) renderTabBar() string {
	labels := make([]string, 0, maxTab+1)
	for t := tab(0); t <= maxTab; t++ {
		style := utils.TabInactiveStyle
		if t == m.activeTab {
			style = utils.TabActiveStyle
		}
		labels = append(labels, style.Render(t.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, labels...)
}

func (m *Model) renderInstructionsTab() string {
	histStart := 0
	if len(m.history) > 15 {
		histStart = len(m.history) - 15
	}
	historyView := lipgloss.JoinVertical(lipgloss.Left, m.history[histStart:]...)
	stackLine := utils.FormatKeyValue("operand stack", renderStack(m.frame), 16)

	return lipgloss.JoinVertical(lipgloss.Left,
		utils.MutedStyle.Render("instructions"),
		historyView,
		"",
		stackLine,
	)
}

func (m *Model) renderHeapTab() string {
	heapLine := utils.FormatKeyValue("live objects", fmt.Sprintf("%d", m.interp.Heap.ObjectCount()), 16)

	var objectLines []string
	m.interp.Heap.IterObjects(func(id runtime.ObjectID, obj *runtime.Object) {
		objectLines = append(objectLines, fmt.Sprintf("#%d %s (%d fields)", id, obj.ClassName, len(obj.Fields)))
	})
	if len(objectLines) > 12 {
		objectLines = objectLines[:12]
	}
	objectsView := lipgloss.JoinVertical(lipgloss.Left, objectLines...)

	return lipgloss.JoinVertical(lipgloss.Left,
		heapLine,
		"",
		utils.MutedStyle.Render("heap occupancy"),
		m.occupancy.View(),
		"",
		utils.MutedStyle.Render("live objects"),
		objectsView,
	)
}

func renderStack(f *runtime.Frame) string {
	if f.StackSize() == 0 {
		return "(empty)"
	}
	values := make([]string, 0, f.StackSize())
	for _, v := range f.Stack {
		values = append(values, v.String())
	}
	out := ""
	for i, v := range values {
		if i > 0 {
			out += ", "
		}
		out += v
	}
	return out
}

// Run starts the bubbletea program and blocks until the user quits or
// the method finishes.
func Run(interp *exec.Interpreter, cf *classfile.ClassFile, method *classfile.MethodInfo) error {
	m, err := New(interp, cf, method)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m)
	_, err = p.Run()
	return err
}
