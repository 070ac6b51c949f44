package jecna

// Partition names the part of a subject a grade belongs to (ex. "Teorie",
// "Cvičení"). Subjects that are not divided keep all their grades in the
// Undivided partition.
//
// Partition is comparable and can be used as a map key.
type Partition struct {
	label   string
	divided bool
}

func Undivided() Partition {
	return Partition{}
}

func PartOf(label string) Partition {
	return Partition{label: label, divided: true}
}

// Label returns the label of the partition and false for Undivided.
func (p Partition) Label() (string, bool) {
	return p.label, p.divided
}

func (p Partition) IsUndivided() bool {
	return !p.divided
}

func (p Partition) String() string {
	if !p.divided {
		return "(undivided)"
	}
	return p.label
}
