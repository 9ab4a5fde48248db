// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package summarize

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/triage/alignment"
)

// Opts controls classification.
type Opts struct {
	// MinMapQ and MaxMapQ bound the mapping quality of the records that are
	// kept, both inclusive.
	MinMapQ int
	MaxMapQ int
}

// DefaultOpts keeps records whose mapping quality is in the open interval
// (1, 255). 255 means that the quality is not available.
var DefaultOpts = Opts{
	MinMapQ: 2,
	MaxMapQ: 254,
}

// Validate checks that the options are usable.
func (o Opts) Validate() error {
	if o.MinMapQ < 0 || o.MaxMapQ > 255 || o.MinMapQ > o.MaxMapQ {
		return errors.E(errors.Invalid, fmt.Sprintf("invalid mapping quality range [%d, %d]", o.MinMapQ, o.MaxMapQ))
	}
	return nil
}

// Exclusion is the reason a record was dropped.
type Exclusion int

const (
	// NotExcluded means that the record passed every exclusion.
	NotExcluded Exclusion = iota
	QCFail
	Unmapped
	Duplicate
	BadMapQ
)

// Verdict is the outcome of Classify.
type Verdict struct {
	Exclusion Exclusion
	// Paired and Split are set only if Exclusion is NotExcluded.
	Paired bool
	Split  bool
	// SA is the value of the SA tag of a split record.
	SA string
}

// Classify applies the exclusions to r, in order: QC failure, unmapped,
// duplicate, mapping quality outside [opts.MinMapQ, opts.MaxMapQ]. If none
// applies, it evaluates the categories independently.
func Classify(r *sam.Record, opts Opts) Verdict {
	switch {
	case r.Flags&sam.QCFail != 0:
		return Verdict{Exclusion: QCFail}
	case r.Flags&sam.Unmapped != 0:
		return Verdict{Exclusion: Unmapped}
	case r.Flags&sam.Duplicate != 0:
		return Verdict{Exclusion: Duplicate}
	case int(r.MapQ) < opts.MinMapQ || int(r.MapQ) > opts.MaxMapQ:
		return Verdict{Exclusion: BadMapQ}
	}
	var v Verdict
	primary := r.Flags&(sam.Secondary|sam.Supplementary) == 0
	v.Paired = primary && r.Flags&sam.Paired != 0 && r.Flags&sam.Unmapped == 0
	if primary {
		if sa := alignment.SATagValue(r); sa != "" {
			v.Split = true
			v.SA = sa
		}
	}
	return v
}
