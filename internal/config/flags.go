package config

import "flag"

// fieldValue binds a flag directly to a config field, so values are only
// replaced when the flag is given.
type fieldValue struct {
	ptr any
}

func (v fieldValue) String() string {
	if v.ptr == nil {
		return ""
	}
	return formatValue(v.ptr)
}

func (v fieldValue) Set(s string) error {
	return setValue(v.ptr, s)
}

func (v fieldValue) IsBoolFlag() bool {
	_, ok := v.ptr.(*bool)
	return ok
}

// RegisterFlags defines the config flags on fs, bound to cfg.
func RegisterFlags(fs *flag.FlagSet, cfg *Config) {
	for _, f := range fields() {
		if f.flag == "" {
			continue
		}
		fs.Var(fieldValue{ptr: f.ptr(cfg)}, f.flag, f.usage)
	}
}

// parseFlags defines and parses CLI flags. If sources is non-nil, it
// tracks the source of each value.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("prospector", flag.ContinueOnError)
	}
	RegisterFlags(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if sources == nil {
		return nil
	}

	flagToSource := make(map[string]string)
	for _, f := range fields() {
		if f.flag != "" {
			flagToSource[f.flag] = f.key
		}
	}
	fs.Visit(func(f *flag.Flag) {
		if fieldName, ok := flagToSource[f.Name]; ok {
			sources[fieldName] = SourceFlag
		}
	})
	return nil
}
