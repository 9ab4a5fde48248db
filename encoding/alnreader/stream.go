// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package alnreader

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"runtime"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/klauspost/compress/gzip"
	"v.io/x/lib/vlog"
)

// sniffBytes must hold at least one full BGZF block (64KiB).
const sniffBytes = 128 << 10

var (
	gzipMagic = []byte{0x1f, 0x8b}
	bamMagic  = []byte("BAM\x01")
	cramMagic = []byte("CRAM")
)

// Opts defines options for Open.
type Opts struct {
	// Format forces the input format. If Unknown, the format is guessed from
	// the path, then from the contents.
	Format FileType
	// Reference is the FASTA file the reads were aligned against. If
	// nonempty, the header references are checked against its index.
	Reference string
	// Parallelism is the number of BAM decompression goroutines. If <= 0,
	// runtime.NumCPU() is used.
	Parallelism int
}

// recordDecoder is implemented by both hts sam.Reader and bam.Reader.
type recordDecoder interface {
	Header() *sam.Header
	Read() (*sam.Record, error)
}

type streamReader struct {
	ctx  context.Context
	path string
	// in is nil when reading stdin.
	in      file.File
	closers []io.Closer
	dec     recordDecoder

	rec   *sam.Record
	nRecs int
	done  bool
	err   error
}

// Open opens the SAM or BAM file at path for a single pass over its records.
// The path may be "-" for stdin, or any path understood by
// github.com/grailbio/base/file.
func Open(ctx context.Context, path string, opts Opts) (Reader, error) {
	r := &streamReader{ctx: ctx, path: path}
	var in io.Reader
	if path == "-" {
		in = os.Stdin
	} else {
		f, err := file.Open(ctx, path)
		if err != nil {
			return nil, errors.E(err, "alnreader: open", path)
		}
		r.in = f
		in = f.Reader(ctx)
	}
	if err := r.init(bufio.NewReaderSize(in, sniffBytes), opts); err != nil {
		r.release()
		return nil, err
	}
	if opts.Reference != "" {
		if err := CheckReference(ctx, r.dec.Header(), opts.Reference); err != nil {
			r.release()
			return nil, err
		}
	}
	return r, nil
}

func (r *streamReader) init(in *bufio.Reader, opts Opts) error {
	ftype := opts.Format
	if ftype == Unknown {
		ftype = GuessFileType(r.path)
	}
	if ftype == Unknown {
		var err error
		if ftype, err = sniff(in); err != nil {
			return errors.E(err, "alnreader: detect format of", r.path)
		}
	}
	vlog.VI(1).Infof("%s: reading as %v", r.path, ftype)
	switch ftype {
	case BAM:
		parallelism := opts.Parallelism
		if parallelism <= 0 {
			parallelism = runtime.NumCPU()
		}
		br, err := bam.NewReader(in, parallelism)
		if err != nil {
			return errors.E(err, "alnreader: open BAM", r.path)
		}
		r.closers = append(r.closers, br)
		r.dec = br
	case SAM:
		var text io.Reader = in
		if head, _ := in.Peek(len(gzipMagic)); bytes.Equal(head, gzipMagic) {
			gz, err := gzip.NewReader(in)
			if err != nil {
				return errors.E(err, "alnreader: open gzip", r.path)
			}
			r.closers = append(r.closers, gz)
			text = gz
		}
		sr, err := sam.NewReader(text)
		if err != nil {
			return errors.E(err, "alnreader: open SAM", r.path)
		}
		r.dec = sr
	case CRAM:
		return errors.E(errors.NotSupported, "alnreader:", r.path,
			"CRAM decoding is not supported; convert the input to BAM first")
	default:
		return errors.E(errors.Invalid, "alnreader:", r.path, "unknown format", ftype.String())
	}
	return nil
}

// sniff inspects the head of the input without consuming it. Gzip input is
// BAM if the first decompressed bytes are the BAM magic, and compressed SAM
// otherwise.
func sniff(in *bufio.Reader) (FileType, error) {
	head, err := in.Peek(len(cramMagic))
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	if bytes.Equal(head, cramMagic) {
		return CRAM, nil
	}
	if !bytes.HasPrefix(head, gzipMagic) {
		return SAM, nil
	}
	block, err := in.Peek(sniffBytes)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	gz, err := gzip.NewReader(bytes.NewReader(block))
	if err != nil {
		return Unknown, err
	}
	magic := make([]byte, len(bamMagic))
	if _, err := io.ReadFull(gz, magic); err != nil {
		// Less than four bytes of text; let the SAM parser deal with it.
		return SAM, nil
	}
	if bytes.Equal(magic, bamMagic) {
		return BAM, nil
	}
	return SAM, nil
}

// Header implements the Reader interface.
func (r *streamReader) Header() *sam.Header {
	return r.dec.Header()
}

// Scan implements the Reader interface.
func (r *streamReader) Scan() bool {
	if r.done || r.err != nil {
		return false
	}
	rec, err := r.dec.Read()
	if err != nil {
		r.rec = nil
		if err == io.EOF {
			r.done = true
		} else {
			r.err = errors.E(err, "alnreader: read", r.path, "record", strconv.Itoa(r.nRecs))
		}
		return false
	}
	r.rec = rec
	r.nRecs++
	return true
}

// Record implements the Reader interface.
func (r *streamReader) Record() *sam.Record {
	return r.rec
}

// Err implements the Reader interface.
func (r *streamReader) Err() error {
	return r.err
}

// Close implements the Reader interface.
func (r *streamReader) Close() error {
	err := r.release()
	if r.err != nil {
		return r.err
	}
	vlog.VI(1).Infof("%s: read %d records", r.path, r.nRecs)
	return err
}

// release closes the decoders and the underlying file, innermost first.
func (r *streamReader) release() error {
	var err error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if e := r.closers[i].Close(); e != nil && err == nil {
			err = e
		}
	}
	r.closers = nil
	if r.in != nil {
		if e := r.in.Close(r.ctx); e != nil && err == nil {
			err = errors.E(e, "alnreader: close", r.path)
		}
		r.in = nil
	}
	return err
}
