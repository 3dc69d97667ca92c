package analyzer

// Area identifies the GPS area reported by the track sensors.
type Area int

const (
	AreaInit Area = iota
	AreaTrackSensor1
	AreaTrackSensor2
	AreaTrackSensor3
	AreaTrackSensor4
	AreaTrackSensor5
	AreaTrackSensor6
	AreaTrackSensor7
	AreaTrackSensor8
	AreaTrackSensor9
	AreaRaceStart
	AreaRaceEnd

	AreaUnknown Area = 99
)

// AreaFromInt maps a raw CSV value onto an Area, returning AreaUnknown for
// anything outside the sensor range.
func AreaFromInt(v int) Area {
	if v >= int(AreaInit) && v <= int(AreaRaceEnd) {
		return Area(v)
	}
	return AreaUnknown
}

// Section identifies the track section the vehicle is in.
type Section int

const (
	SectionEntering Section = iota
	SectionDownhill
	SectionUphillStandby
	SectionUphill
	SectionUphillSlowdown
	SectionLandingIC
	SectionLanding
	SectionGarage
	SectionBoardingIC
	SectionBoarding

	SectionUnknown Section = 99
)

// sectionNames is the canonical section spelling used in the CSV logs.
var sectionNames = map[Section]string{
	SectionEntering:       "ENTERING",
	SectionDownhill:       "DOWNHILL",
	SectionUphillStandby:  "UPHILL_STANDBY",
	SectionUphill:         "UPHILL",
	SectionUphillSlowdown: "UPHILL_SLOWDOWN",
	SectionLandingIC:      "LANDING_IC",
	SectionLanding:        "LANDING",
	SectionGarage:         "GARAGE",
	SectionBoardingIC:     "BOARDING_IC",
	SectionBoarding:       "BOARDING",
}

var sectionsByName = func() map[string]Section {
	m := make(map[string]Section, len(sectionNames))
	for k, v := range sectionNames {
		m[v] = k
	}
	return m
}()

// String returns the canonical log spelling of the section.
func (s Section) String() string {
	if name, ok := sectionNames[s]; ok {
		return name
	}
	return "SECTION_UNKNOWN"
}

// SectionFromString maps a CSV section value onto a Section, returning
// SectionUnknown for unrecognized values.
func SectionFromString(s string) Section {
	if sec, ok := sectionsByName[s]; ok {
		return sec
	}
	return SectionUnknown
}

// EntryType classifies a log entry for rendering.
type EntryType string

const (
	EntrySectionChange EntryType = "SECTION_CHANGE"
	EntryRaceEvent     EntryType = "RACE_EVENT"
	EntryRaceInfo      EntryType = "RACE_INFO"
)

// LogEntry is a single analyzed event with the time, rendered context line,
// and the raw area/section at that point.
type LogEntry struct {
	Time    string
	Context string
	Type    EntryType
	Area    Area
	Section Section
}

// Result holds the outcome of analyzing one CSV log.
type Result struct {
	FirstTime string
	LastTime  string
	RaceCount int
	Entries   []LogEntry
}
