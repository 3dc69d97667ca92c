// Package analyzer extracts race events from GPS track CSV logs: section
// transitions, race start/end markers, and a per-run race count.
package analyzer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/dhkang-dev/raceboard/internal/errors"
)

// Analyzer walks a CSV log row by row, tracking area/section transitions.
type Analyzer struct {
	encoding string // auto, utf-8, euc-kr
}

// New creates an Analyzer. encoding follows config.Analyze.Encoding.
func New(encoding string) *Analyzer {
	if encoding == "" {
		encoding = "auto"
	}
	return &Analyzer{encoding: encoding}
}

// AnalyzeFile opens and analyzes the CSV log at path.
func (a *Analyzer) AnalyzeFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.AnalysisFailed(path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	res, err := a.Analyze(f)
	if err != nil {
		return nil, apperrors.AnalysisFailed(path, err)
	}
	return res, nil
}

// Analyze reads CSV rows from r and returns the detected events.
//
// Required columns: time and section. An area column is optional; rows with
// a missing or unparsable area keep AreaUnknown. Header names are matched
// case-insensitively with surrounding whitespace ignored.
func (a *Analyzer) Analyze(r io.Reader) (*Result, error) {
	decoded, err := decodeReader(r, a.encoding)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(decoded)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	timeIdx, areaIdx, sectionIdx := -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "time":
			timeIdx = i
		case "area":
			areaIdx = i
		case "section":
			sectionIdx = i
		}
	}
	if sectionIdx == -1 {
		return nil, apperrors.MissingColumn("section")
	}
	if timeIdx == -1 {
		return nil, apperrors.MissingColumn("time")
	}

	res := &Result{}
	var prevArea Area = -1
	var prevSection Section = -1
	first := true

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row: %w", err)
		}

		ts := strings.TrimSpace(row[timeIdx])
		if first {
			res.FirstTime = ts
			first = false
		}
		res.LastTime = ts

		section := SectionFromString(strings.TrimSpace(row[sectionIdx]))

		area := AreaUnknown
		if areaIdx != -1 && areaIdx < len(row) {
			if raw := strings.TrimSpace(row[areaIdx]); raw != "" {
				if v, err := strconv.Atoi(raw); err == nil {
					area = AreaFromInt(v)
				}
			}
		}

		// A new race begins on the transition into the boarding IC section.
		if section == SectionBoardingIC && prevSection != SectionBoardingIC {
			res.RaceCount++
			res.addEntry(ts,
				fmt.Sprintf("============== RACE %d START ==============", res.RaceCount),
				EntryRaceInfo, area, section)
		}

		if prevSection != -1 && section != prevSection {
			res.addEntry(ts, section.String(), EntrySectionChange, area, section)
		}

		if area == AreaRaceStart && prevArea != area {
			res.addEntry(ts, "GPS_RACE_START!!!", EntryRaceEvent, area, section)
		}
		if area == AreaRaceEnd && prevArea != area {
			res.addEntry(ts, "GPS_RACE_END!!!", EntryRaceEvent, area, section)
		}

		prevArea = area
		prevSection = section
	}

	return res, nil
}

func (r *Result) addEntry(ts, context string, typ EntryType, area Area, section Section) {
	r.Entries = append(r.Entries, LogEntry{
		Time:    ts,
		Context: context,
		Type:    typ,
		Area:    area,
		Section: section,
	})
}
