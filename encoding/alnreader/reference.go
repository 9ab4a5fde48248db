// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package alnreader

import (
	"context"

	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/triage/encoding/fasta"
)

// CheckReference compares the references listed in header with the index of
// the FASTA file at refPath. Missing references and length mismatches are
// logged, not returned; the error is non-nil only if the index cannot be read.
func CheckReference(ctx context.Context, header *sam.Header, refPath string) error {
	entries, err := fasta.LoadIndex(ctx, refPath)
	if err != nil {
		return err
	}
	lengths := fasta.ReferenceLengths(entries)
	nBad := 0
	for _, ref := range header.Refs() {
		n, ok := lengths[ref.Name()]
		switch {
		case !ok:
			log.Error.Printf("reference %s of the alignment header is not in %s", ref.Name(), refPath)
			nBad++
		case n != int64(ref.Len()):
			log.Error.Printf("reference %s has length %d in the alignment header, but %d in %s",
				ref.Name(), ref.Len(), n, refPath)
			nBad++
		}
	}
	if nBad > 0 {
		log.Error.Printf("%d of %d header references do not match %s", nBad, len(header.Refs()), refPath)
	} else {
		log.Debug.Printf("all %d header references match %s", len(header.Refs()), refPath)
	}
	return nil
}
