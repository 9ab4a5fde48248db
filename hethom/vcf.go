// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package hethom

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/exascience/elprep/v5/utils"
	"github.com/exascience/elprep/v5/vcf"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// Missing is the allele index of a "." genotype call.
const Missing = -1

const (
	colFormat      = 8
	colFirstSample = 9
)

const fileFormatPrefix = "##fileformat="

// Header holds the parts of a VCF header used by the sampler.
type Header struct {
	// Version is the value of the ##fileformat line, e.g. "VCFv4.1".
	Version string
	// Samples lists the sample IDs of the #CHROM line, in column order.
	Samples []string
}

// Variant is one VCF data line.
type Variant struct {
	Chrom string
	// Pos is the 1-based position, as written in the file.
	Pos  int
	ID   string
	Ref  string
	Alts []string
	// GT holds the allele indexes of each sample's GT call, in sample order.
	// Missing alleles are set to Missing. GT is nil if the line has no GT
	// field.
	GT [][]int
}

// Alt returns the first ALT allele, or "." if there is none.
func (v *Variant) Alt() string {
	if len(v.Alts) == 0 {
		return "."
	}
	return v.Alts[0]
}

// Reader reads VCF text, plain or gzip/bgzip compressed. Header and data
// lines are parsed by github.com/exascience/elprep/v5/vcf.
type Reader struct {
	in     *bufio.Reader
	header Header
	parser *vcf.VariantParser
	sc     vcf.StringScanner
	lineNo int
}

// NewReader creates a reader and parses the header of in.
func NewReader(in io.Reader) (*Reader, error) {
	br := bufio.NewReader(in)
	if magic, err := br.Peek(2); err == nil && isGzip(magic) {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, errors.Wrap(err, "vcf: open gzip input")
		}
		br = bufio.NewReader(gz)
	}
	if head, _ := br.Peek(len(fileFormatPrefix)); string(head) != fileFormatPrefix {
		return nil, errors.New("vcf: missing ##fileformat line")
	}
	hdr, lines, err := vcf.ParseHeader(br)
	if err != nil {
		return nil, errors.Wrap(err, "vcf: read header")
	}
	if len(hdr.Columns) < colFormat || hdr.Columns[0] != "CHROM" {
		return nil, errors.Errorf("vcf: line %d: malformed #CHROM header line", lines)
	}
	r := &Reader{in: br, lineNo: lines}
	r.header.Version = strings.TrimPrefix(hdr.FileFormat, fileFormatPrefix)
	if len(hdr.Columns) > colFirstSample {
		samples := append([]string(nil), hdr.Columns[colFirstSample:]...)
		last := len(samples) - 1
		samples[last] = strings.TrimRight(samples[last], "\r")
		r.header.Samples = samples
	}
	// GT is read as text whatever the header declares; the first parser
	// registered for a key wins.
	gt := vcf.NewFormatInformation()
	gt.ID, gt.Number, gt.Type = vcf.GT, 1, vcf.String
	hdr.Formats = append([]*vcf.FormatInformation{gt}, hdr.Formats...)
	if r.parser, err = hdr.NewVariantParser(); err != nil {
		return nil, errors.Wrap(err, "vcf: header")
	}
	return r, nil
}

// Header returns the header of the file.
func (r *Reader) Header() *Header {
	return &r.header
}

func (r *Reader) readLine() (string, error) {
	line, err := r.in.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	if err != nil {
		return "", err
	}
	r.lineNo++
	return strings.TrimRight(line, "\r\n"), nil
}

// Read returns the next variant. It returns io.EOF after the last one.
func (r *Reader) Read() (*Variant, error) {
	var line string
	for line == "" {
		var err error
		if line, err = r.readLine(); err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, errors.Wrap(err, "vcf: read")
		}
	}
	v, err := r.parseVariant(line)
	if err != nil {
		return nil, errors.Wrapf(err, "vcf: line %d", r.lineNo)
	}
	return v, nil
}

func (r *Reader) parseVariant(line string) (*Variant, error) {
	if err := r.declareFormat(line); err != nil {
		return nil, err
	}
	r.sc.Reset(line)
	pv := r.sc.ParseVariant(r.parser)
	if err := r.sc.Err(); err != nil {
		return nil, err
	}
	if pv == nil {
		return nil, errors.New("malformed data line")
	}
	v := &Variant{
		Chrom: pv.Chrom,
		Pos:   int(pv.Pos),
		ID:    ".",
		Ref:   pv.Ref,
		Alts:  pv.Alt,
	}
	if len(pv.ID) > 0 {
		v.ID = strings.Join(pv.ID, ";")
	}
	hasGT := false
	for _, key := range pv.GenotypeFormat {
		if key == vcf.GT {
			hasGT = true
			break
		}
	}
	if !hasGT || len(pv.GenotypeData) == 0 {
		return v, nil
	}
	if len(pv.GenotypeData) != len(r.header.Samples) {
		return nil, errors.Errorf("found %d samples, header lists %d", len(pv.GenotypeData), len(r.header.Samples))
	}
	v.GT = make([][]int, len(pv.GenotypeData))
	for i, g := range pv.GenotypeData {
		gt, err := genotypeAlleles(g)
		if err != nil {
			return nil, errors.Wrapf(err, "sample %s", r.header.Samples[i])
		}
		v.GT[i] = gt
	}
	return v, nil
}

// declareFormat registers a String parser for each FORMAT key of line that
// the header does not declare.
func (r *Reader) declareFormat(line string) error {
	cols := strings.SplitN(line, "\t", colFirstSample+1)
	if len(cols) <= colFormat {
		return nil
	}
	for _, key := range strings.Split(cols[colFormat], ":") {
		sym := utils.Intern(key)
		if _, ok := r.parser.FormatParsers.Get(sym); ok {
			continue
		}
		info := vcf.NewFormatInformation()
		info.ID, info.Number, info.Type = sym, vcf.NumberDot, vcf.String
		parser, err := vcf.CreateFormatParser(info)
		if err != nil {
			return errors.Wrapf(err, "FORMAT %s", key)
		}
		r.parser.FormatParsers = append(r.parser.FormatParsers, utils.SmallMapEntry{Key: sym, Value: parser})
	}
	return nil
}

// genotypeAlleles returns the GT call of one sample. A sample that drops the
// trailing GT field has a single Missing allele.
func genotypeAlleles(g vcf.Genotype) ([]int, error) {
	if len(g.GT) > 0 {
		alleles := make([]int, len(g.GT))
		for i, a := range g.GT {
			if a < 0 {
				alleles[i] = Missing
			} else {
				alleles[i] = int(a)
			}
		}
		return alleles, nil
	}
	value, ok := g.Data.Get(vcf.GT)
	if !ok || value == nil {
		return []int{Missing}, nil
	}
	s, ok := value.(string)
	if !ok {
		return nil, errors.Errorf("invalid GT value %v", value)
	}
	return parseGT(s)
}

// parseGT parses a GT value such as "0/1", "1|1" or "./.".
func parseGT(s string) ([]int, error) {
	var alleles []int
	for len(s) > 0 {
		n := strings.IndexAny(s, "/|")
		if n < 0 {
			n = len(s)
		}
		a := s[:n]
		if a == "." {
			alleles = append(alleles, Missing)
		} else {
			idx, err := strconv.Atoi(a)
			if err != nil || idx < 0 {
				return nil, errors.Errorf("invalid GT allele %q", a)
			}
			alleles = append(alleles, idx)
		}
		if n == len(s) {
			break
		}
		s = s[n+1:]
	}
	if len(alleles) == 0 {
		return nil, errors.New("empty GT")
	}
	return alleles, nil
}

// isGzip reports whether b starts with the gzip magic, which bgzip shares.
func isGzip(b []byte) bool {
	return bytes.HasPrefix(b, []byte{0x1f, 0x8b})
}
