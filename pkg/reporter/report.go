package reporter

import (
	"bufio"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/pterm/pterm"

	"github.com/kondukto-io/pinguard/internal/core/domain"
	"github.com/kondukto-io/pinguard/pkg/logger"
)

// DefaultFile is used when no output file name is given
const DefaultFile = "/tmp/pinguard.out"

// Reporter is a reporter for guard decisions
type Reporter struct {
	mu             sync.Mutex
	events         []domain.ReportEvent
	eventsHashMap  map[string]bool
	Err            error
	outputFileName string
	file           *os.File
}

// NewReporter returns a new reporter
func NewReporter(outputFileName string) *Reporter {
	if outputFileName == "" {
		outputFileName = DefaultFile
		logger.Log.Debugf("using the default output file: %s", outputFileName)
	}

	var report = &Reporter{
		eventsHashMap:  make(map[string]bool, 0),
		outputFileName: outputFileName,
	}

	file, err := report.openReportFile()
	if err != nil {
		report.Err = fmt.Errorf("failed to open report file: %w", err)
		return report
	}

	report.file = file

	return report
}

// NewEvent builds the report event of a single guard decision
func NewEvent(u *url.URL, target *domain.ResolvedTarget, err error) domain.ReportEvent {
	var event = domain.ReportEvent{
		Policy: domain.EventPolicyStatusPass,
	}

	if u != nil {
		event.URL = u.Redacted()
		event.Host = u.Hostname()
	}

	if target != nil {
		event.Host = target.OriginalHost
		event.DestinationAddress = target.Address.String()
		event.DestinationPort = target.OriginalPort
		event.HostHeader = target.HostHeader()
	}

	if err != nil {
		event.Policy = domain.EventPolicyStatusBlock
		event.Reason = err.Error()
	}

	return event
}

// LoadAndPrint reads a report file and prints its table
func LoadAndPrint(fileName string) error {
	if fileName == "" {
		fileName = DefaultFile
	}

	f, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer f.Close()

	r := Reporter{
		outputFileName: fileName,
	}

	rd := bufio.NewReader(f)
	for {
		line, err := rd.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}

		if len(line) > 0 {
			event := domain.ReportEvent{}
			if err := json.Unmarshal([]byte(line), &event); err != nil {
				return fmt.Errorf("failed to parse report line: %w", err)
			}
			r.events = append(r.events, event)
		}

		if errors.Is(err, io.EOF) {
			break
		}
	}

	return r.PrintReportTable()
}

// WriteEvent adds an event to the report file. Events with the same
// host, address and port are written once.
func (r *Reporter) WriteEvent(event domain.ReportEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var key = event.Host + "|" + event.DestinationAddress + ":" + strconv.Itoa(event.DestinationPort) + "|" + event.Policy
	var hash = hash(key)

	if _, ok := r.eventsHashMap[hash]; ok {
		logger.Log.Debugf("event [%s] already exists", key)
		return nil
	}

	r.events = append(r.events, event)
	r.eventsHashMap[hash] = true

	eventData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := r.file.Write(append(eventData, '\n')); err != nil {
		return fmt.Errorf("failed to write an event to file [%s]: %w", r.file.Name(), err)
	}

	return nil
}

// Events returns the events written so far
func (r *Reporter) Events() []domain.ReportEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]domain.ReportEvent(nil), r.events...)
}

// Close closes the report file
func (r *Reporter) Close() error {
	if r.file == nil {
		return nil
	}

	return r.file.Close()
}

func (r *Reporter) openReportFile() (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(r.outputFileName), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.OpenFile(r.outputFileName, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}

	return file, nil
}

// PrintReportTable renders the events as a table on stdout
func (r *Reporter) PrintReportTable() error {
	fmt.Print("\n\n")
	data := pterm.TableData{
		{"Host", "Destination Addr", "Host Header", "Policy", "Reason"},
	}

	for _, v := range r.Events() {
		var destination = "-"
		if v.DestinationAddress != "" {
			destination = fmt.Sprintf("%s:%d", v.DestinationAddress, v.DestinationPort)
		}

		data = append(data, []string{
			v.Host,
			destination,
			v.HostHeader,
			v.Policy,
			v.Reason,
		})
	}

	return pterm.DefaultTable.WithHasHeader().WithRowSeparator("-").WithHeaderRowSeparator("-").WithData(data).Render()
}

func hash(text string) string {
	hasher := md5.New()
	hasher.Write([]byte(text))

	return hex.EncodeToString(hasher.Sum(nil))
}
