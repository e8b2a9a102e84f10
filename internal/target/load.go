package target

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

type targetConfig struct {
	Target struct {
		Name    string `toml:"name"`
		Endian  string `toml:"endian"`
		PtrBits uint16 `toml:"ptr_bits"`
	} `toml:"target"`
}

// LoadFile parses a TOML target description:
//
//	[target]
//	name = "sparc64-linux-gnu"
//	endian = "big"
//	ptr_bits = 64
func LoadFile(path string) (Target, error) {
	var cfg targetConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Target{}, fmt.Errorf("failed to parse target file %q: %w", path, err)
	}
	t := Target{
		Name:    cfg.Target.Name,
		PtrBits: cfg.Target.PtrBits,
	}
	switch cfg.Target.Endian {
	case "", "little":
		t.Endian = Little
	case "big":
		t.Endian = Big
	default:
		return Target{}, fmt.Errorf("unknown endianness %q in %q", cfg.Target.Endian, path)
	}
	if t.PtrBits == 0 {
		t.PtrBits = 64
	}
	if t.PtrBits%8 != 0 {
		return Target{}, fmt.Errorf("pointer width %d is not byte-sized in %q", t.PtrBits, path)
	}
	return t, nil
}
