// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package hethom_test

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/triage/hethom"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vcfHeader = "##fileformat=VCFv4.1\n" +
	"##contig=<ID=1,length=1000>\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tS1\tS2\tS3\tS4\n"

const vcfData = vcfHeader +
	"1\t100\tv1\tA\tT\t.\tPASS\t.\tGT\t1/1\t0/1\t0|1\t0/0\n" +
	"1\t200\tv2\tC\tG,T\t.\tPASS\t.\tGT:DP\t./.:3\t1/2:4\t./1:5\t2/2:6\n" +
	"2\t300\t.\tG\tA\t.\tPASS\t.\tDP\t3\t4\t5\t6\n"

func TestZygosity(t *testing.T) {
	m := hethom.Missing
	tests := []struct {
		gt   []int
		want hethom.Class
	}{
		{[]int{0, 0}, hethom.None},
		{[]int{0, 1}, hethom.Het},
		{[]int{1, 0}, hethom.Het},
		{[]int{1, 1}, hethom.Hom},
		{[]int{1, 2}, hethom.Hom},
		{[]int{m, 1}, hethom.Het},
		{[]int{m, m}, hethom.None},
		{[]int{1}, hethom.Het},
		{[]int{1, 1, 1}, hethom.None},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, hethom.Zygosity(test.gt), "gt=%v", test.gt)
	}
	assert.Equal(t, "het", hethom.Het.String())
	assert.Equal(t, "hom", hethom.Hom.String())
}

func TestReader(t *testing.T) {
	r, err := hethom.NewReader(strings.NewReader(vcfData))
	require.NoError(t, err)
	assert.Equal(t, "VCFv4.1", r.Header().Version)
	assert.Equal(t, []string{"S1", "S2", "S3", "S4"}, r.Header().Samples)

	v, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, &hethom.Variant{
		Chrom: "1", Pos: 100, ID: "v1", Ref: "A", Alts: []string{"T"},
		GT: [][]int{{1, 1}, {0, 1}, {0, 1}, {0, 0}},
	}, v)
	hets, homs := hethom.Partition(v)
	assert.Equal(t, []int{1, 2}, hets)
	assert.Equal(t, []int{0}, homs)

	v, err = r.Read()
	require.NoError(t, err)
	assert.Equal(t, "G", v.Alt())
	assert.Equal(t, [][]int{{hethom.Missing, hethom.Missing}, {1, 2}, {hethom.Missing, 1}, {2, 2}}, v.GT)
	hets, homs = hethom.Partition(v)
	assert.Equal(t, []int{2}, hets)
	assert.Equal(t, []int{1, 3}, homs)

	v, err = r.Read()
	require.NoError(t, err)
	assert.Nil(t, v.GT)
	hets, homs = hethom.Partition(v)
	assert.Empty(t, hets)
	assert.Empty(t, homs)

	_, err = r.Read()
	assert.Equal(t, io.EOF, err)
}

func TestReaderDeclaredFormats(t *testing.T) {
	const data = "##fileformat=VCFv4.2\n" +
		"##FORMAT=<ID=GT,Number=1,Type=String,Description=\"Genotype\">\n" +
		"##FORMAT=<ID=DP,Number=1,Type=Integer,Description=\"Depth\">\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tS1\tS2\n" +
		"chr2\t7\trs1;rs2\tT\t.\t50\tPASS\t.\tDP:GT:AD\t9:1/1:4,5\t8:0/1:3,5\n" +
		"chr2\t9\t.\tT\tC\t50\tPASS\t.\tGT:DP\t0/1\t.:7\n"
	r, err := hethom.NewReader(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "VCFv4.2", r.Header().Version)
	assert.Equal(t, []string{"S1", "S2"}, r.Header().Samples)

	v, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, &hethom.Variant{
		Chrom: "chr2", Pos: 7, ID: "rs1;rs2", Ref: "T",
		GT: [][]int{{1, 1}, {0, 1}},
	}, v)
	assert.Equal(t, ".", v.Alt())

	v, err = r.Read()
	require.NoError(t, err)
	assert.Equal(t, ".", v.ID)
	assert.Equal(t, [][]int{{0, 1}, {hethom.Missing}}, v.GT)

	_, err = r.Read()
	assert.Equal(t, io.EOF, err)
}

func TestReaderGzip(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(vcfData))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	r, err := hethom.NewReader(&buf)
	require.NoError(t, err)
	n := 0
	for {
		if _, err := r.Read(); err == io.EOF {
			break
		} else {
			require.NoError(t, err)
		}
		n++
	}
	assert.Equal(t, 3, n)
}

func TestReaderErrors(t *testing.T) {
	_, err := hethom.NewReader(strings.NewReader("##fileformat=VCFv4.1\n"))
	assert.Error(t, err)
	_, err = hethom.NewReader(strings.NewReader("1\t100\tv1\tA\tT\n"))
	assert.Error(t, err)

	for _, line := range []string{
		"1\t100\tv1\tA\n",
		"1\tx\tv1\tA\tT\t.\tPASS\t.\tGT\t1/1\t0/1\t0|1\t0/0\n",
		"1\t100\tv1\tA\tT\t.\tPASS\t.\tGT\t1/1\t0/1\t0|1\n",
		"1\t100\tv1\tA\tT\t.\tPASS\t.\tGT\t1/1\t0/1\t0|1\ta/0\n",
	} {
		r, err := hethom.NewReader(strings.NewReader(vcfHeader + line))
		require.NoError(t, err)
		_, err = r.Read()
		assert.Error(t, err, "line=%q", line)
		assert.Contains(t, err.Error(), "line 4")
	}
}

func TestRunAll(t *testing.T) {
	var out bytes.Buffer
	stats, err := hethom.Run(vcontext.Background(), strings.NewReader(vcfData), &out,
		hethom.Opts{Action: hethom.All})
	require.NoError(t, err)
	assert.Equal(t, hethom.Stats{Variants: 3, Hets: 3, Homs: 3}, stats)
	assert.Equal(t,
		"#CHROM\tPOS\tREF\tALT\tHETS\tHOMS\n"+
			"1\t100\tA\tT\tS2,S3\tS1\n"+
			"1\t200\tC\tG\tS3\tS2,S4\n"+
			"2\t300\tG\tA\t.\t.\n",
		out.String())

	out.Reset()
	_, err = hethom.Run(vcontext.Background(), strings.NewReader(vcfData), &out,
		hethom.Opts{Action: hethom.All, EmitID: true})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.String(), "#CHROM\tPOS\tID\tREF\tALT\tHETS\tHOMS\n1\t100\tv1\tA\tT\tS2,S3\tS1\n"))
}

// manySamplesVCF generates variants where every sample is het for even
// positions and hom for odd ones.
func manySamplesVCF(nSamples int, positions []int) string {
	var b strings.Builder
	b.WriteString("##fileformat=VCFv4.2\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT")
	for i := 0; i < nSamples; i++ {
		fmt.Fprintf(&b, "\tS%02d", i)
	}
	b.WriteString("\n")
	for _, pos := range positions {
		gt := "0/1"
		if pos%2 == 1 {
			gt = "1|1"
		}
		fmt.Fprintf(&b, "chr1\t%d\t.\tA\tC\t.\t.\t.\tGT", pos)
		for i := 0; i < nSamples; i++ {
			b.WriteString("\t" + gt)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func runLines(t *testing.T, vcf string, opts hethom.Opts) map[string]string {
	var out bytes.Buffer
	_, err := hethom.Run(vcontext.Background(), strings.NewReader(vcf), &out, opts)
	require.NoError(t, err)
	lines := map[string]string{}
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n")[1:] {
		cols := strings.Split(line, "\t")
		lines[cols[1]] = line
	}
	return lines
}

func TestRunRandom(t *testing.T) {
	opts := hethom.Opts{Action: hethom.Random, N: 3, Seed: 42}
	forward := runLines(t, manySamplesVCF(20, []int{10, 11, 12, 13}), opts)
	require.Len(t, forward, 4)
	for pos, line := range forward {
		cols := strings.Split(line, "\t")
		hets, homs := cols[4], cols[5]
		if pos == "10" || pos == "12" {
			assert.Len(t, strings.Split(hets, ","), 3, line)
			assert.Equal(t, ".", homs, line)
		} else {
			assert.Equal(t, ".", hets, line)
			assert.Len(t, strings.Split(homs, ","), 3, line)
		}
	}

	// The selection of a variant does not depend on the other variants.
	backward := runLines(t, manySamplesVCF(20, []int{13, 12, 11, 10}), opts)
	assert.Equal(t, forward, backward)
	single := runLines(t, manySamplesVCF(20, []int{12}), opts)
	assert.Equal(t, forward["12"], single["12"])

	// Different seeds eventually pick different samples.
	differ := false
	for seed := int64(0); seed < 10 && !differ; seed++ {
		other := runLines(t, manySamplesVCF(20, []int{10}), hethom.Opts{Action: hethom.Random, N: 3, Seed: seed})
		differ = other["10"] != forward["10"]
	}
	assert.True(t, differ)

	// Fewer candidates than N: all are emitted.
	all := runLines(t, manySamplesVCF(2, []int{10}), opts)
	assert.Equal(t, "chr1\t10\tA\tC\tS00,S01\t.", all["10"])
}

func TestSamplerSelect(t *testing.T) {
	s, err := hethom.NewSampler(hethom.Opts{Action: hethom.Random, N: 5, Seed: 7})
	require.NoError(t, err)
	v := &hethom.Variant{Chrom: "chr1", Pos: 1, Ref: "A", Alts: []string{"C"}}
	for i := 0; i < 100; i++ {
		v.GT = append(v.GT, []int{0, 1})
	}
	hets, homs := s.Select(v)
	assert.Len(t, hets, 5)
	assert.Empty(t, homs)
	for i := 1; i < len(hets); i++ {
		assert.True(t, hets[i-1] < hets[i], "hets=%v", hets)
	}
	again, _ := s.Select(v)
	assert.Equal(t, hets, again)
}

func TestOptsValidate(t *testing.T) {
	assert.NoError(t, hethom.DefaultOpts.Validate())
	assert.NoError(t, hethom.Opts{Action: hethom.All}.Validate())
	assert.Error(t, hethom.Opts{Action: "some"}.Validate())
	assert.Error(t, hethom.Opts{Action: hethom.Random, N: -1}.Validate())
	_, err := hethom.Run(vcontext.Background(), strings.NewReader(vcfData), &bytes.Buffer{}, hethom.Opts{Action: "x"})
	assert.Error(t, err)
}
