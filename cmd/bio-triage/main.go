// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// bio-triage summarizes the split and paired reads of an alignment file, and
// samples het and hom carriers from a VCF file.
//
// Examples:
//
//   bio-triage summarize -out summary.json.gz s3://bucket/sample.bam
//   samtools view -h sample.bam | bio-triage summarize -
//   bio-triage hethom -n 5 -seed 7 calls.vcf.gz
package main

import (
	"flag"
	"os"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/file/s3file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/triage/cmd/bio-triage/cmd"
)

func init() {
	file.RegisterImplementation("s3", func() file.Implementation {
		return s3file.NewImplementation(s3file.NewDefaultProvider(session.Options{}), s3file.Options{})
	})
}

func main() {
	shutdown := grail.Init()
	code := cmd.Run(flag.Args())
	shutdown()
	os.Exit(code)
}
