package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyRunType    = "run_type"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyName       = "name"
	KeyURL        = "url"
	KeyTool       = "tool"
	KeyExitCode   = "exit_code"
	KeyRaces      = "races"
	KeyUID        = "uid"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func RunType(t string) slog.Attr      { return slog.String(KeyRunType, t) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Name(n string) slog.Attr         { return slog.String(KeyName, n) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Tool(t string) slog.Attr         { return slog.String(KeyTool, t) }
func ExitCode(c int) slog.Attr        { return slog.Int(KeyExitCode, c) }
func Races(n int) slog.Attr           { return slog.Int(KeyRaces, n) }
func UID(u string) slog.Attr          { return slog.String(KeyUID, u) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
