package main

import (
	"context"
	"strings"
	"sync"
	"time"

	"ens-lookup/config"
	"ens-lookup/ens"
	"ens-lookup/styles"
	"ens-lookup/wallet"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// -------------------- MODEL --------------------

// connState is the session state: disconnected or connected. Connected is
// terminal for the lifetime of the program.
type connState interface {
	isConnState()
}

// disconnected is the initial state, also entered when a connection
// attempt fails
type disconnected struct {
	connecting bool
	lastErr    string
}

// connected holds the established session
type connected struct {
	session *wallet.Session
}

func (disconnected) isConnState() {}
func (connected) isConnState()    {}

// model represents the application state following The Elm Architecture
type model struct {
	w, h int

	ctx    context.Context
	cancel context.CancelFunc

	cfg     config.Config
	boot    *wallet.Bootstrapper
	bootErr error

	state      connState
	bootstraps int // number of bootstrap attempts started

	spin spinner.Model

	// lookup form, recreated after every submission
	lookupForm    *huh.Form
	lookupName    *string
	lookupSeq     int
	lookupPending bool
	lookupResult  ens.LookupResult

	// blocking alert, shown until dismissed
	alert string

	// clipboard feedback
	copiedMsg string

	showQR bool

	// logger panel
	logEnabled  bool
	logger      *log.Logger
	logBuffer   *syncBuffer
	logViewport viewport.Model
	logReady    bool
	logSpinner  spinner.Model
}

// syncBuffer is a log sink shared between Update and commands that log
// from their own goroutine
type syncBuffer struct {
	mu sync.Mutex
	b  strings.Builder
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

// -------------------- INIT --------------------

// newModel creates the model. A nil boot is allowed; bootErr is then shown
// in place of connecting.
func newModel(cfg config.Config, boot *wallet.Bootstrapper, bootErr error) model {
	ctx, cancel := context.WithCancel(context.Background())

	// spinner
	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(styles.CAccent2)

	// Initialize log viewport
	vp := viewport.New(0, 10) // Will be resized in Update on first WindowSizeMsg
	vp.Style = lipgloss.NewStyle().
		Foreground(styles.CText).
		Background(styles.CPanel)

	// Initialize log spinner
	logSpin := spinner.New()
	logSpin.Spinner = spinner.Dot
	logSpin.Style = lipgloss.NewStyle().Foreground(styles.CAccent2)

	logBuf := &syncBuffer{}
	logger := newPanelLogger(logBuf)
	if boot != nil {
		boot.SetLogger(logger.WithPrefix("wallet"))
	}

	name := ""
	return model{
		ctx:         ctx,
		cancel:      cancel,
		cfg:         cfg,
		boot:        boot,
		bootErr:     bootErr,
		state:       disconnected{},
		spin:        sp,
		lookupName:  &name,
		logEnabled:  cfg.Logger,
		logger:      logger,
		logBuffer:   logBuf,
		logViewport: vp,
		logSpinner:  logSpin,
	}
}

// newPanelLogger creates a logger that writes to the log panel buffer
func newPanelLogger(buf *syncBuffer) *log.Logger {
	logger := log.NewWithOptions(buf, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Level:           log.DebugLevel,
	})
	logger.SetStyles(&log.Styles{
		Timestamp: lipgloss.NewStyle().Foreground(styles.CMuted),
		Caller:    lipgloss.NewStyle().Faint(true),
		Prefix:    lipgloss.NewStyle().Bold(true).Foreground(styles.CAccent2),
		Message:   lipgloss.NewStyle().Foreground(styles.CText),
		Key:       lipgloss.NewStyle().Foreground(styles.CAccent),
		Value:     lipgloss.NewStyle().Foreground(styles.CText),
		Separator: lipgloss.NewStyle().Faint(true),
		Levels: map[log.Level]lipgloss.Style{
			log.DebugLevel: lipgloss.NewStyle().Foreground(styles.CMuted).SetString("DEBUG"),
			log.InfoLevel:  lipgloss.NewStyle().Foreground(styles.CAccent2).SetString("INFO"),
			log.WarnLevel:  lipgloss.NewStyle().Foreground(styles.CWarn).SetString("WARN"),
			log.ErrorLevel: lipgloss.NewStyle().Foreground(styles.CError).SetString("ERROR"),
		},
	})
	return logger
}

// Init implements tea.Model interface and returns initial commands. The
// wallet is connected once here; later renders never reconnect.
func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick, initLogViewport()}
	if m.logEnabled {
		cmds = append(cmds, m.logSpinner.Tick)
	}
	if cmd := m.startBootstrap(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// -------------------- MODEL HELPER METHODS --------------------

// startBootstrap begins a connection attempt unless one is running or the
// session is already connected
func (m *model) startBootstrap() tea.Cmd {
	d, ok := m.state.(disconnected)
	if !ok || d.connecting {
		return nil
	}
	if m.boot == nil {
		msg := "no wallet endpoint configured"
		if m.bootErr != nil {
			msg = m.bootErr.Error()
		}
		m.state = disconnected{lastErr: msg}
		m.addLog("error", msg)
		return nil
	}

	m.state = disconnected{connecting: true}
	m.bootstraps++
	m.addLog("info", "Connecting wallet at `"+m.boot.URL()+"`")
	return bootstrapWallet(m.ctx, m.boot)
}

// createLookupForm builds a fresh single-field form for the next lookup
func (m *model) createLookupForm() tea.Cmd {
	*m.lookupName = ""

	m.lookupForm = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Resolve address").
				Description("Enter an ENS name and press Enter").
				Placeholder("vitalik.eth").
				Value(m.lookupName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errEmptyName
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeCatppuccin()).WithShowHelp(false)

	return m.lookupForm.Init()
}

// submitLookup starts a forward lookup for name. Results of earlier
// lookups still in flight are dropped when they arrive.
func (m *model) submitLookup(name string) tea.Cmd {
	c, ok := m.state.(connected)
	if !ok {
		return nil
	}
	m.lookupSeq++
	m.lookupPending = true
	m.addLog("info", "Resolving `"+name+"`")

	return tea.Batch(
		resolveName(m.ctx, c.session.Resolver, m.lookupSeq, name, m.cfg.Timeouts.Lookup.Std()),
		m.createLookupForm(),
	)
}

// shutdown cancels in-flight calls and releases the session
func (m *model) shutdown() {
	m.cancel()
	if c, ok := m.state.(connected); ok {
		c.session.Close()
	}
}

// addLog adds a log entry with timestamp and type
func (m *model) addLog(logType, message string) {
	if m.logger == nil {
		return
	}

	switch logType {
	case "info":
		m.logger.Info(message)
	case "success":
		m.logger.Info("✓", "msg", message)
	case "error":
		m.logger.Error(message)
	case "warning":
		m.logger.Warn(message)
	case "debug":
		m.logger.Debug(message)
	default:
		m.logger.Print(message)
	}

	m.updateLogViewport()
}

// updateLogViewport refreshes the viewport content with log output
func (m *model) updateLogViewport() {
	if !m.logReady || m.logBuffer == nil {
		return
	}

	m.logViewport.SetContent(m.logBuffer.String())
	// Scroll to bottom to show latest entries
	m.logViewport.GotoBottom()
}
