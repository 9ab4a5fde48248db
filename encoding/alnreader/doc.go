// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package alnreader provides a streaming, single-pass reader over SAM and BAM
// files stored locally, on S3, or piped through stdin.
//
// Open picks the decoder from the path suffix, or by sniffing the first bytes
// of the input when the suffix is not recognized. CRAM input is detected but
// not decoded.
//
// When Opts.Reference names a FASTA file, Open cross-checks the references in
// the alignment header against the FASTA index and logs every mismatch.
package alnreader
