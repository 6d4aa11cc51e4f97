package sl

import "log/slog"

// Module tags a log record with the subsystem it came from.
func Module(name string) slog.Attr {
	return slog.String("module", name)
}

func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Secret logs a sensitive value as a masked preview.
func Secret(key, value string) slog.Attr {
	return slog.String(key, mask(value))
}

func mask(value string) string {
	if len(value) <= 8 {
		return "****"
	}
	return value[:4] + "****" + value[len(value)-4:]
}
