// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSAM = "@HD\tVN:1.5\tSO:unsorted\n" +
	"@SQ\tSN:chr1\tLN:100000\n" +
	"@SQ\tSN:chr2\tLN:100000\n" +
	"p1\t97\tchr1\t101\t60\t10M\tchr2\t500\t0\tACGTACGTAC\t*\n" +
	"s1\t0\tchr1\t201\t60\t5M5S\t*\t0\t0\tACGTACGTAC\t*\tSA:Z:chr2,1000,-,5S5M,60,0;\n" +
	"d1\t1024\tchr1\t301\t60\t10M\t*\t0\t0\tACGTACGTAC\t*\n" +
	"m1\t1\tchr1\t401\t1\t10M\t*\t0\t0\tACGTACGTAC\t*\n"

func newSummarizeFlags(out, ref string) summarizeFlags {
	var (
		bed         = ""
		regions     = ""
		format      = ""
		parallelism = 1
		minMapQ     = 2
		maxMapQ     = 254
	)
	return summarizeFlags{
		ref:         &ref,
		bed:         &bed,
		regions:     &regions,
		out:         &out,
		format:      &format,
		parallelism: &parallelism,
		minMapQ:     &minMapQ,
		maxMapQ:     &maxMapQ,
	}
}

func TestSummarize(t *testing.T) {
	ctx := vcontext.Background()
	tmpDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	in := filepath.Join(tmpDir, "in.sam")
	require.NoError(t, ioutil.WriteFile(in, []byte(testSAM), 0644))
	ref := filepath.Join(tmpDir, "ref.fa")
	require.NoError(t, ioutil.WriteFile(ref+".fai", []byte("chr1\t100000\t6\t60\t61\nchr2\t100000\t101680\t60\t61\n"), 0644))
	out := filepath.Join(tmpDir, "out.json")

	var stderr bytes.Buffer
	require.NoError(t, summarizeAlignments(ctx, in, newSummarizeFlags(out, ref), &stderr))
	assert.Equal(t, "cnt: 2 qc: 0 unmap: 0 dup: 1 mapq: 1 paired: 1 split: 1 split_sa: 1\n", stderr.String())
	data, err := ioutil.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t,
		`{"paired":{"p1":[{"chr":"chr1","start":100,"end":110,"is_reverse":false}]},`+
			`"split":{"s1":[{"chr":"chr1","start":200,"end":205,"is_reverse":false},{"chr":"chr2","start":1000,"end":1005,"is_reverse":true}]}}`+"\n",
		string(data))
}

func TestSummarizeRegions(t *testing.T) {
	ctx := vcontext.Background()
	tmpDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	in := filepath.Join(tmpDir, "in.sam")
	require.NoError(t, ioutil.WriteFile(in, []byte(testSAM), 0644))
	out := filepath.Join(tmpDir, "out.json")

	// Only s1 overlaps; the SA partner of s1 is reported although it lies
	// outside the region.
	flags := newSummarizeFlags(out, "")
	*flags.regions = "chr1:150-250"
	var stderr bytes.Buffer
	require.NoError(t, summarizeAlignments(ctx, in, flags, &stderr))
	assert.Equal(t, "cnt: 1 qc: 0 unmap: 0 dup: 0 mapq: 0 paired: 0 split: 1 split_sa: 1\n", stderr.String())

	bed := filepath.Join(tmpDir, "in.bed")
	require.NoError(t, ioutil.WriteFile(bed, []byte("chr1\t100\t101\nchr1\t300\t301\n"), 0644))
	flags = newSummarizeFlags(out, "")
	*flags.bed = bed
	stderr.Reset()
	require.NoError(t, summarizeAlignments(ctx, in, flags, &stderr))
	assert.Equal(t, "cnt: 1 qc: 0 unmap: 0 dup: 1 mapq: 0 paired: 1 split: 0 split_sa: 0\n", stderr.String())

	*flags.regions = "chr1"
	assert.Error(t, summarizeAlignments(ctx, in, flags, &stderr))
}

func TestSummarizeFailure(t *testing.T) {
	ctx := vcontext.Background()
	tmpDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	// No output is written when the input cannot be read.
	out := filepath.Join(tmpDir, "out.json")
	var stderr bytes.Buffer
	assert.Error(t, summarizeAlignments(ctx, filepath.Join(tmpDir, "missing.bam"), newSummarizeFlags(out, ""), &stderr))
	_, err := ioutil.ReadFile(out)
	assert.Error(t, err)
	assert.Empty(t, stderr.String())

	flags := newSummarizeFlags(out, "")
	*flags.format = "fastq"
	assert.Error(t, summarizeAlignments(ctx, filepath.Join(tmpDir, "x.sam"), flags, &stderr))
}

func TestHethom(t *testing.T) {
	ctx := vcontext.Background()
	tmpDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	in := filepath.Join(tmpDir, "in.vcf")
	require.NoError(t, ioutil.WriteFile(in, []byte("##fileformat=VCFv4.1\n"+
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tA\tB\n"+
		"1\t100\trs1\tA\tT\t.\tPASS\t.\tGT\t0/1\t1/1\n"), 0644))
	var (
		out    = filepath.Join(tmpDir, "out.tsv")
		action = "all"
		n      = 5
		seed   = int64(1)
		emitID = true
	)
	require.NoError(t, selectHetHom(ctx, in, hethomFlags{action: &action, n: &n, seed: &seed, emitID: &emitID, out: &out}))
	data, err := ioutil.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "#CHROM\tPOS\tID\tREF\tALT\tHETS\tHOMS\n1\t100\trs1\tA\tT\tA\tB\n", string(data))

	action = "pick"
	assert.Error(t, selectHetHom(ctx, in, hethomFlags{action: &action, n: &n, seed: &seed, emitID: &emitID, out: &out}))
}

func TestInputPath(t *testing.T) {
	p, err := inputPath("x", nil)
	assert.NoError(t, err)
	assert.Equal(t, "-", p)
	p, err = inputPath("x", []string{"a.bam"})
	assert.NoError(t, err)
	assert.Equal(t, "a.bam", p)
	_, err = inputPath("x", []string{"a", "b"})
	assert.Error(t, err)
}
