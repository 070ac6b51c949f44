package jecna

type gradeEntry struct {
	partition Partition
	grade     Grade
}

// Grades is an immutable collection of grades grouped by partition, grades
// keep the order in which they were added.
type Grades struct {
	entries []gradeEntry
}

func (g Grades) Len() int {
	return len(g.entries)
}

func (g Grades) All() []Grade {
	out := make([]Grade, len(g.entries))
	for i, e := range g.entries {
		out[i] = e.grade.clone()
	}
	return out
}

// ForPartition returns the grades of a partition, an unknown partition
// yields an empty slice.
func (g Grades) ForPartition(p Partition) []Grade {
	out := []Grade{}
	for _, e := range g.entries {
		if e.partition == p {
			out = append(out, e.grade.clone())
		}
	}
	return out
}

// Partitions lists partitions in order of their first grade.
func (g Grades) Partitions() []Partition {
	seen := map[Partition]struct{}{}
	var out []Partition
	for _, e := range g.entries {
		if _, ok := seen[e.partition]; ok {
			continue
		}
		seen[e.partition] = struct{}{}
		out = append(out, e.partition)
	}
	return out
}

// Average is the arithmetic mean of all numeric grades, 'N' grades are
// skipped. It returns ErrNoGrades if there is nothing to average.
func (g Grades) Average() (float64, error) {
	sum := 0
	count := 0
	for _, e := range g.entries {
		value, ok := e.grade.NumericValue()
		if !ok {
			continue
		}
		sum += value
		count++
	}
	if count == 0 {
		return 0, ErrNoGrades
	}
	return float64(sum) / float64(count), nil
}

// WeightedAverage counts small grades once and regular grades twice.
func (g Grades) WeightedAverage() (float64, error) {
	sum := 0
	weights := 0
	for _, e := range g.entries {
		value, ok := e.grade.NumericValue()
		if !ok {
			continue
		}
		sum += value * e.grade.Weight()
		weights += e.grade.Weight()
	}
	if weights == 0 {
		return 0, ErrNoGrades
	}
	return float64(sum) / float64(weights), nil
}

type GradesBuilder struct {
	entries []gradeEntry
}

func (b *GradesBuilder) Add(p Partition, grade Grade) *GradesBuilder {
	b.entries = append(b.entries, gradeEntry{partition: p, grade: grade})
	return b
}

func (b *GradesBuilder) Build() Grades {
	entries := make([]gradeEntry, len(b.entries))
	for i, e := range b.entries {
		entries[i] = gradeEntry{partition: e.partition, grade: e.grade.clone()}
	}
	return Grades{entries: entries}
}
