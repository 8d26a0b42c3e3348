// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"storj.io/ecpool"
	"storj.io/ecpool/reedsolomon"
	"storj.io/ecpool/replica"
)

// Error is the error class of the command.
var Error = errs.Class("ecpool")

// settings are the coding settings shared by all commands. They can be set
// in a TOML file and overridden with flags.
type settings struct {
	Codec       string `toml:"codec"`
	K           int    `toml:"k"`
	M           int    `toml:"m"`
	Checksum    string `toml:"checksum"`
	Compression string `toml:"compression"`
	Workers     int    `toml:"workers"`
	Verbose     bool   `toml:"verbose"`
}

func defaultSettings() settings {
	return settings{
		Codec:       "reedsolomon",
		K:           6,
		M:           3,
		Checksum:    reedsolomon.ChecksumNone.String(),
		Compression: reedsolomon.CompressionNone.String(),
	}
}

// loadSettings reads settings from a TOML file on top of the defaults.
func loadSettings(path string) (settings, error) {
	s := defaultSettings()

	file, err := os.Open(path)
	if err != nil {
		return s, Error.Wrap(fmt.Errorf("open config: %w", err))
	}
	defer func() { _ = file.Close() }()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&s); err != nil {
		return s, Error.Wrap(fmt.Errorf("parse config %q: %w", path, err))
	}
	return s, nil
}

// builder returns the ecpool.Builder described by the settings.
func (s settings) builder() (ecpool.Builder, error) {
	switch strings.ToLower(s.Codec) {
	case "reedsolomon", "rs", "":
		checksum, err := reedsolomon.ParseChecksum(s.Checksum)
		if err != nil {
			return nil, err
		}
		compression, err := reedsolomon.ParseCompression(s.Compression)
		if err != nil {
			return nil, err
		}
		builder, err := reedsolomon.NewBuilder(s.K, s.M,
			reedsolomon.WithChecksum(checksum),
			reedsolomon.WithCompression(compression))
		if err != nil {
			return nil, err
		}
		return builder, nil
	case "replica":
		coder, err := replica.New(s.K, s.M)
		if err != nil {
			return nil, err
		}
		return coder, nil
	default:
		return nil, Error.New("unknown codec %q", s.Codec)
	}
}

func (s settings) logger() (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.DisableStacktrace = true
	config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if s.Verbose {
		config.Level.SetLevel(zapcore.DebugLevel)
	}
	log, err := config.Build()
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return log, nil
}
