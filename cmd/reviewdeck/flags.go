package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/at-ishikawa/reviewdeck/internal/config"
	"github.com/at-ishikawa/reviewdeck/internal/srs"
)

// storeFlags overrides the store selection of the config file.
type storeFlags struct {
	driver  string
	learner string
}

func (f *storeFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.driver, "store", "", "store driver: memory, yaml, mysql, sqlite or remote (default from config)")
	flags.StringVar(&f.learner, "learner", "", "learner id (default from config)")
}

func (f *storeFlags) apply(cfg *config.Config) {
	if f.driver != "" {
		cfg.Store.Driver = f.driver
	}
	if f.learner != "" {
		cfg.LearnerID = f.learner
	}
}

// KindFlag is an srs.ItemKind usable as a flag value.
type KindFlag srs.ItemKind

// Set implements pflag.Value.
func (k *KindFlag) Set(v string) error {
	kind, err := srs.ParseItemKind(v)
	if err != nil {
		return fmt.Errorf("invalid value %q, valid values are vocabulary, phrase or pronunciation", v)
	}
	*k = KindFlag(kind)
	return nil
}

// String implements pflag.Value.
func (k *KindFlag) String() string {
	if k == nil {
		return ""
	}
	return srs.ItemKind(*k).String()
}

// Type implements pflag.Value.
func (k *KindFlag) Type() string {
	return "kind"
}

var (
	_ pflag.Value = (*KindFlag)(nil)
)
