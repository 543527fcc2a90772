package terminal

import "github.com/charles-dyfis-net/isg-state-machine-framework/config"

// Sendline sends content (if non-empty) followed by the configured
// line terminator (os.endline, an escaped string).
func (s *Session) Sendline(content string) error {
	if content != "" {
		if err := s.Send([]byte(content)); err != nil {
			return err
		}
	}
	endline, err := s.cfg.GetEscaped(config.Path{"os"}, "endline")
	if err != nil {
		return err
	}
	return s.Send([]byte(endline))
}

// SendKey resolves key via the built-in key table, overridden by
// os.term_key_<key> when present, and sends the resulting bytes. It
// fails with UnknownKeyError when neither the built-in table nor a
// config override defines the key.
func (s *Session) SendKey(key string) error {
	configKey := "term_key_" + key
	_, hasDefault := builtinKeys[key]
	hasOverride := s.cfg.Exists(config.Path{"os"}, configKey)
	if !hasDefault && !hasOverride {
		return &UnknownKeyError{Key: key}
	}
	if hasOverride {
		value, err := s.cfg.GetEscaped(config.Path{"os"}, configKey)
		if err != nil {
			return err
		}
		return s.Send([]byte(value))
	}
	return s.Send([]byte(builtinKeys[key]))
}
