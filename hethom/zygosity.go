// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package hethom selects, for each variant of a VCF file, samples that are
// heterozygous or homozygous for a non-reference allele.
package hethom

// Class is the zygosity of one sample at one variant.
type Class int

const (
	// None covers homozygous reference, fully missing calls, and calls with
	// more than two non-reference alleles.
	None Class = iota
	// Het means exactly one non-reference allele.
	Het
	// Hom means exactly two non-reference alleles.
	Hom
)

func (c Class) String() string {
	switch c {
	case Het:
		return "het"
	case Hom:
		return "hom"
	}
	return "none"
}

// Zygosity classifies a GT call by counting its non-reference alleles.
// Missing alleles never count, so "./1" is Het.
func Zygosity(gt []int) Class {
	n := 0
	for _, a := range gt {
		if a > 0 {
			n++
		}
	}
	switch n {
	case 1:
		return Het
	case 2:
		return Hom
	}
	return None
}

// Partition returns the indexes of the het and hom samples of v, in sample
// order.
func Partition(v *Variant) (hets, homs []int) {
	for i, gt := range v.GT {
		switch Zygosity(gt) {
		case Het:
			hets = append(hets, i)
		case Hom:
			homs = append(homs, i)
		}
	}
	return hets, homs
}
