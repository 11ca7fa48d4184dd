// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package bolt

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// WrapReader envolve o leitor bruto de uma conexão segundo o modo de
// compressão configurado para ela. CompressionNone retorna o
// próprio leitor sem alteração.
func WrapReader(r io.Reader, mode CompressionMode) (io.Reader, error) {
	switch mode {
	case CompressionNone:
		return r, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("creating zstd frame reader: %w", err)
		}
		return dec.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("unknown compression mode %d", mode)
	}
}

// zstdWriteCloser adapta *zstd.Encoder a io.WriteCloser com uma
// assinatura estável para o chamador, independente da versão da
// biblioteca.
type zstdWriteCloser struct {
	enc *zstd.Encoder
}

// Write grava e imediatamente força um Flush: cada chamada de Write
// corresponde a um frame já delimitado por quem chama (WriteFrame), e o
// outro lado precisa do frame completo assim que escrito, não quando o
// buffer interno do encoder decidir emitir.
func (z *zstdWriteCloser) Write(p []byte) (int, error) {
	n, err := z.enc.Write(p)
	if err != nil {
		return n, err
	}
	if err := z.enc.Flush(); err != nil {
		return n, fmt.Errorf("flushing zstd frame: %w", err)
	}
	return n, nil
}

func (z *zstdWriteCloser) Close() error { return z.enc.Close() }

// WrapWriter envolve o escritor bruto de uma conexão segundo o modo de
// compressão configurado para ela. CompressionNone retorna o
// próprio escritor sem alteração, embrulhado para satisfazer
// io.WriteCloser com um Close no-op.
func WrapWriter(w io.Writer, mode CompressionMode) (io.WriteCloser, error) {
	switch mode {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("creating zstd frame writer: %w", err)
		}
		return &zstdWriteCloser{enc: enc}, nil
	default:
		return nil, fmt.Errorf("unknown compression mode %d", mode)
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
