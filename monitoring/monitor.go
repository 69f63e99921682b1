// Package monitoring serves L-system expansions over HTTP. It hands expanded
// sequences to the browser renderer and reports the progress and resource
// usage of the process.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/rs/xid"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/hunterpope03/c-l-system-studio/lsystem"
	"github.com/hunterpope03/c-l-system-studio/monitoring/web"
	"github.com/hunterpope03/c-l-system-studio/recording"
	"github.com/hunterpope03/c-l-system-studio/rewriting"
)

// DefaultRunLimit is the number of recorded runs listed when the request does
// not set a limit.
const DefaultRunLimit = 50

// Monitor turns an expansion engine into a web server. It expands systems on
// request and reports progress and resource usage.
type Monitor struct {
	engine     *rewriting.Engine
	validator  lsystem.Validator
	runReader  recording.DataReader
	portNumber int
	server     *http.Server

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor that expands with a default engine.
func NewMonitor() *Monitor {
	m := &Monitor{
		validator: lsystem.DefaultValidator(),
	}

	m.RegisterEngine(rewriting.MakeBuilder().Build())

	return m
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithValidator sets the validator applied to user-submitted systems.
func (m *Monitor) WithValidator(v lsystem.Validator) *Monitor {
	m.validator = v
	return m
}

// RegisterEngine sets the engine that serves expansions and attaches a
// progress hook to it. It must be called before the server starts.
func (m *Monitor) RegisterEngine(e *rewriting.Engine) {
	e.AcceptHook(NewProgressHook(m))
	m.engine = e
}

// RegisterRunReader sets the reader used to list recorded expansions.
func (m *Monitor) RegisterRunReader(r recording.DataReader) {
	recording.MapTables(r)
	m.runReader = r
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Handler returns the router that serves the API and the web page.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()

	fServer := http.FileServer(web.GetAssets())
	r.HandleFunc("/api/presets", m.listPresets).Methods(http.MethodGet)
	r.HandleFunc("/api/preset/{name}", m.presetDetails).Methods(http.MethodGet)
	r.HandleFunc("/api/expand", m.expand).Methods(http.MethodPost)
	r.HandleFunc("/api/expand/{name}", m.expandPreset).Methods(http.MethodGet)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/runs", m.listRuns)
	r.HandleFunc("/api/runs/{id}", m.listGenerations)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)
	r.PathPrefix("/").Handler(fServer)

	return r
}

// StartServer starts the monitor as a web server and returns its URL. A
// random port is used unless WithPortNumber set one.
func (m *Monitor) StartServer() (string, error) {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring expansions with %s\n", url)

	m.server = &http.Server{
		Handler:           m.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		err := m.server.Serve(listener)
		if !errors.Is(err, http.ErrServerClosed) {
			dieOnErr(err)
		}
	}()

	return url, nil
}

// Stop shuts the server down, waiting for in-flight requests until ctx is
// done.
func (m *Monitor) Stop(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

// OpenInBrowser opens url in the default browser.
func OpenInBrowser(url string) error {
	return browser.OpenURL(url)
}

func (m *Monitor) listPresets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, lsystem.PresetNames())
}

func (m *Monitor) presetDetails(w http.ResponseWriter, r *http.Request) {
	sys, ok := m.findPresetOr404(w, mux.Vars(r)["name"])
	if !ok {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&sys)
	serializer.SetMaxDepth(3)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type expandReq struct {
	Axiom          string          `json:"axiom"`
	Rules          lsystem.RuleSet `json:"rules"`
	Iterations     int             `json:"iterations"`
	TurnAngle      float64         `json:"turn_angle"`
	StartDirection float64         `json:"start_direction"`
}

type expandRsp struct {
	Name           string  `json:"name,omitempty"`
	Sequence       string  `json:"sequence"`
	Length         int     `json:"length"`
	TurnAngle      float64 `json:"turn_angle"`
	StartDirection float64 `json:"start_direction"`
}

type errorRsp struct {
	Errors []string `json:"errors"`
}

func (m *Monitor) expand(w http.ResponseWriter, r *http.Request) {
	req := expandReq{}

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeErrors(w, http.StatusBadRequest, err)
		return
	}

	sys := lsystem.LSystem{
		Axiom:          req.Axiom,
		Rules:          req.Rules,
		Iterations:     req.Iterations,
		TurnAngle:      req.TurnAngle,
		StartDirection: req.StartDirection,
	}

	err = m.validator.Validate(sys)
	if err != nil {
		writeErrors(w, http.StatusBadRequest, err)
		return
	}

	m.expandAndRespond(w, sys)
}

func (m *Monitor) expandPreset(w http.ResponseWriter, r *http.Request) {
	sys, ok := m.findPresetOr404(w, mux.Vars(r)["name"])
	if !ok {
		return
	}

	m.expandAndRespond(w, sys)
}

func (m *Monitor) expandAndRespond(w http.ResponseWriter, sys lsystem.LSystem) {
	seq, err := m.engine.ExpandSystem(sys)
	if errors.Is(err, rewriting.ErrAllocationFailure) {
		writeErrors(w, http.StatusInsufficientStorage, err)
		return
	}
	dieOnErr(err)

	writeJSON(w, http.StatusOK, expandRsp{
		Name:           sys.Name,
		Sequence:       string(seq),
		Length:         len(seq),
		TurnAngle:      sys.TurnAngle,
		StartDirection: sys.StartDirection,
	})
}

func (m *Monitor) findPresetOr404(
	w http.ResponseWriter,
	name string,
) (lsystem.LSystem, bool) {
	sys, ok := lsystem.Preset(name)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Preset not found"))
		dieOnErr(err)
	}

	return sys, ok
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]progressBarRsp, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.snapshot())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, http.StatusOK, bars)
}

func (m *Monitor) listRuns(w http.ResponseWriter, r *http.Request) {
	if !m.runReaderOr404(w) {
		return
	}

	limit := DefaultRunLimit

	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeErrors(w, http.StatusBadRequest,
				fmt.Errorf("invalid limit %q", s))
			return
		}

		limit = n
	}

	runs, err := recording.RecentExpansions(r.Context(), m.runReader, limit)
	dieOnErr(err)

	writeJSON(w, http.StatusOK, runs)
}

func (m *Monitor) listGenerations(w http.ResponseWriter, r *http.Request) {
	if !m.runReaderOr404(w) {
		return
	}

	gens, err := recording.Generations(
		r.Context(), m.runReader, mux.Vars(r)["id"])
	dieOnErr(err)

	writeJSON(w, http.StatusOK, gens)
}

func (m *Monitor) runReaderOr404(w http.ResponseWriter) bool {
	if m.runReader != nil {
		return true
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Recording is not enabled"))
	dieOnErr(err)

	return false
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	proc, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memorySize, err := proc.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, http.StatusOK, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		writeErrors(w, http.StatusConflict, err)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, http.StatusOK, prof)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func writeErrors(w http.ResponseWriter, status int, err error) {
	rsp := errorRsp{}

	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			rsp.Errors = append(rsp.Errors, e.Error())
		}
	} else {
		rsp.Errors = []string{err.Error()}
	}

	writeJSON(w, status, rsp)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
