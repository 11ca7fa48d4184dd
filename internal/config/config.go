// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package config carrega e valida a configuração YAML do driver e da
// CLI de consulta: endereço do servidor, TLS/TOFU, logging e as
// políticas de retry/limitação de taxa da conexão.
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ClientConfig é a configuração completa de um cliente voltgraph: o
// endereço do servidor, as opções de TLS/confiança, a política de
// reconexão e o logging.
type ClientConfig struct {
	Server  ServerAddr  `yaml:"server"`
	TLS     TLSOptions  `yaml:"tls"`
	Retry   RetryInfo   `yaml:"retry"`
	Limits  LimitsInfo  `yaml:"limits"`
	Logging LoggingInfo `yaml:"logging"`
}

// ServerAddr é o endereço TCP/TLS do servidor de grafos.
type ServerAddr struct {
	Address string `yaml:"address"`
}

// TLSOptions controla a verificação de confiança no primeiro uso.
type TLSOptions struct {
	// KnownHostsFile é o caminho do armazenamento de impressões
	// digitais confiáveis. Vazio usa trust.DefaultPath().
	KnownHostsFile string `yaml:"known_hosts_file"`
	// Compression seleciona a compressão de todo o fluxo de frames da
	// conexão, nos dois sentidos: "none" (padrão) ou "zstd".
	Compression string `yaml:"compression"`
}

// RetryInfo controla o backoff exponencial de reconexão.
type RetryInfo struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
}

// LimitsInfo controla limites de recurso da conexão.
type LimitsInfo struct {
	// BufferCapacity é o número de records em voo no buffer com
	// back-pressure entre o decoder e o consumidor.
	BufferCapacity int `yaml:"buffer_capacity"`
	// MaxFrameBytes limita o tamanho de um único frame recebido, como
	// "64mb". Vazio usa o padrão do codec.
	MaxFrameBytes string `yaml:"max_frame_bytes"`
	// MaxFrameBytesResolved é MaxFrameBytes já convertido para bytes por
	// validate, pronto para connection.Options.MaxFrameBytes. Zero
	// aplica o padrão do codec.
	MaxFrameBytesResolved int64 `yaml:"-"`
	// DialRateBytesPerSec limita o número de tentativas de dial por
	// segundo (o mesmo valor é a rajada máxima): cada Dial consome uma
	// unidade, independentemente de quantos bytes troca. 0 desabilita
	// o limite.
	DialRateBytesPerSec int64 `yaml:"dial_rate_bytes_per_sec"`
}

// LoggingInfo contém configurações de logging.
type LoggingInfo struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
	// ConnectionLogDir, se definido, grava um arquivo JSON separado por
	// conexão com nível DEBUG, além do logger global — útil para
	// reconstruir a troca de frames de um statement problemático sem
	// elevar o nível do log global. Vazio desabilita.
	ConnectionLogDir string `yaml:"connection_log_dir"`
}

// Load lê e valida o arquivo YAML de configuração no caminho
// informado.
func Load(path string) (*ClientConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading client config: %w", err)
	}
	return Parse(data)
}

// Parse decodifica e valida bytes YAML diretamente, sem tocar o
// sistema de arquivos — usado por testes e por quem já carregou a
// configuração de outra fonte.
func Parse(data []byte) (*ClientConfig, error) {
	var cfg ClientConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing client config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating client config: %w", err)
	}
	return &cfg, nil
}

func (c *ClientConfig) validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if c.TLS.Compression == "" {
		c.TLS.Compression = "none"
	}
	if c.TLS.Compression != "none" && c.TLS.Compression != "zstd" {
		return fmt.Errorf("tls.compression must be \"none\" or \"zstd\", got %q", c.TLS.Compression)
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = 5
	}
	if c.Retry.InitialDelay <= 0 {
		c.Retry.InitialDelay = 500 * time.Millisecond
	}
	if c.Retry.MaxDelay <= 0 {
		c.Retry.MaxDelay = 30 * time.Second
	}
	if c.Limits.BufferCapacity <= 0 {
		c.Limits.BufferCapacity = 256
	}
	if c.Limits.MaxFrameBytes != "" {
		n, err := ParseByteSize(c.Limits.MaxFrameBytes)
		if err != nil {
			return fmt.Errorf("limits.max_frame_bytes: %w", err)
		}
		if n <= 0 || n > math.MaxUint32 {
			return fmt.Errorf("limits.max_frame_bytes %q out of bounds", c.Limits.MaxFrameBytes)
		}
		c.Limits.MaxFrameBytesResolved = n
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	return nil
}

// ParseByteSize converte strings human-readable como "256mb", "1gb"
// para bytes.
func ParseByteSize(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	type suffix struct {
		s string
		m int64
	}
	// Ordenado do sufixo mais longo para o mais curto para evitar que
	// "mb" combine como "b".
	suffixes := []suffix{
		{"gb", 1024 * 1024 * 1024},
		{"mb", 1024 * 1024},
		{"kb", 1024},
		{"b", 1},
	}

	for _, sfx := range suffixes {
		if strings.HasSuffix(s, sfx.s) {
			numStr := strings.TrimSuffix(s, sfx.s)
			num, err := strconv.ParseInt(numStr, 10, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid number %q: %w", numStr, err)
			}
			return num * sfx.m, nil
		}
	}

	num, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unknown size format %q", s)
	}
	return num, nil
}
