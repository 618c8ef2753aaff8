// Package areaconfig parses a small INI-style text format into a
// storagearea.Descriptor, for tooling (cmd/recorddump, cmd/recordcrashtest)
// that needs to build an Area from a config file rather than Go literals.
//
// Format, one "key = value" pair per line, "#" starts a comment:
//
//	write_block_size = 8
//	erase_block_size = 4096
//	erase_block_count = 16
//	properties = limited_overwrite,auto_erase
//
// properties is a comma-separated list of: readonly, full_overwrite,
// limited_overwrite, zero_erase, auto_erase.
package areaconfig

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/embedstore/recordstore/storagearea"
)

var propertyOrder = []struct {
	name string
	p    storagearea.Property
}{
	{"readonly", storagearea.ReadOnly},
	{"full_overwrite", storagearea.FullOverwrite},
	{"limited_overwrite", storagearea.LimitedOverwrite},
	{"zero_erase", storagearea.ZeroErase},
	{"auto_erase", storagearea.AutoErase},
}

func lookupProperty(name string) (storagearea.Property, bool) {
	for _, e := range propertyOrder {
		if e.name == name {
			return e.p, true
		}
	}
	return 0, false
}

// Parse reads descriptor fields from r and returns the resulting
// storagearea.Descriptor. It does not call Validate; callers should do so
// once the descriptor is fully assembled.
func Parse(r io.Reader) (storagearea.Descriptor, error) {
	var desc storagearea.Descriptor
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		key, value, ok := strings.Cut(text, "=")
		if !ok {
			return storagearea.Descriptor{}, fmt.Errorf("areaconfig: line %d: missing '='", line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		var err error
		switch key {
		case "write_block_size":
			desc.WriteBlockSize, err = parseUint32(value)
		case "erase_block_size":
			desc.EraseBlockSize, err = parseUint32(value)
		case "erase_block_count":
			desc.EraseBlockCount, err = parseUint32(value)
		case "properties":
			desc.Props, err = parseProperties(value)
		default:
			return storagearea.Descriptor{}, fmt.Errorf("areaconfig: line %d: unknown key %q", line, key)
		}
		if err != nil {
			return storagearea.Descriptor{}, fmt.Errorf("areaconfig: line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return storagearea.Descriptor{}, err
	}
	return desc, nil
}

func parseUint32(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}

func parseProperties(s string) (storagearea.Properties, error) {
	var props storagearea.Properties
	if s == "" {
		return props, nil
	}
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(strings.ToLower(name))
		p, ok := lookupProperty(name)
		if !ok {
			return 0, fmt.Errorf("unknown property %q", name)
		}
		props = props.With(p)
	}
	return props, nil
}

// Write serializes desc in the format Parse reads back.
func Write(w io.Writer, desc storagearea.Descriptor) error {
	var names []string
	for _, e := range propertyOrder {
		if desc.Props.Has(e.p) {
			names = append(names, e.name)
		}
	}
	_, err := fmt.Fprintf(w,
		"write_block_size = %d\nerase_block_size = %d\nerase_block_count = %d\nproperties = %s\n",
		desc.WriteBlockSize, desc.EraseBlockSize, desc.EraseBlockCount, strings.Join(names, ","))
	return err
}
