// Package ledger records which services are running and under which PID.
//
// On disk a ledger is plain text, one "name:pid" record per line:
//
//	dev:41235
//	ngrok:41236
//
// The format carries no other metadata and must stay exactly this shape.
package ledger

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// MinPID is the lowest PID a record may carry. PID 1 is init and never a launched service.
const MinPID = 2

// maxLineLen bounds a single ledger line; longer lines are skipped as malformed.
const maxLineLen = 4096

// PidRecord is one launched service.
type PidRecord struct {
	Name string `json:"name"`
	PID  int    `json:"pid"`
}

func (r PidRecord) String() string {
	return r.Name + ":" + strconv.Itoa(r.PID)
}

// Registry is an ordered set of records with unique names.
type Registry []PidRecord

// Add appends a record, or replaces the PID of an existing record with the same name.
func (r *Registry) Add(name string, pid int) error {
	if err := validateName(name); err != nil {
		return err
	}
	if pid < MinPID {
		return errors.Errorf("service %q: invalid pid %d", name, pid)
	}
	for i := range *r {
		if (*r)[i].Name == name {
			(*r)[i].PID = pid
			return nil
		}
	}
	*r = append(*r, PidRecord{Name: name, PID: pid})
	return nil
}

func (r Registry) Lookup(name string) (PidRecord, bool) {
	for _, rec := range r {
		if rec.Name == name {
			return rec, true
		}
	}
	return PidRecord{}, false
}

func (r Registry) Names() []string {
	out := make([]string, 0, len(r))
	for _, rec := range r {
		out = append(out, rec.Name)
	}
	return out
}

func validateName(name string) error {
	if name == "" {
		return errors.New("empty service name")
	}
	if strings.ContainsAny(name, ":\n\r") {
		return errors.Errorf("service name %q contains ':' or a newline", name)
	}
	return nil
}

// Encode renders the registry in ledger format. Records without a PID are omitted.
func Encode(reg Registry) []byte {
	var b bytes.Buffer
	for _, rec := range reg {
		if rec.PID < MinPID || validateName(rec.Name) != nil {
			continue
		}
		b.WriteString(rec.String())
		b.WriteByte('\n')
	}
	return b.Bytes()
}

// ParseLine parses a single "name:pid" record.
func ParseLine(line string) (PidRecord, error) {
	line = strings.TrimSpace(line)
	i := strings.LastIndexByte(line, ':')
	if i <= 0 {
		return PidRecord{}, errors.Errorf("malformed ledger line %q", line)
	}
	pid, err := strconv.Atoi(line[i+1:])
	if err != nil || pid < MinPID {
		return PidRecord{}, errors.Errorf("malformed pid in ledger line %q", line)
	}
	return PidRecord{Name: line[:i], PID: pid}, nil
}

// Decode reads a ledger. Blank lines are ignored, malformed or overlong lines are skipped
// with a warning.
func Decode(r io.Reader) (Registry, error) {
	reg := Registry{}
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, errors.Wrap(err, "read ledger")
		}
		switch {
		case len(line) > maxLineLen:
			log.Warn().Int("length", len(line)).Msg("skipping overlong ledger line")
		case strings.TrimSpace(line) != "":
			rec, perr := ParseLine(line)
			if perr != nil {
				log.Warn().Err(perr).Msg("skipping ledger line")
				break
			}
			reg = append(reg, rec)
		}
		if err == io.EOF {
			return reg, nil
		}
	}
}
