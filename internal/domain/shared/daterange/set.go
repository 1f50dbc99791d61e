package daterange

import "sort"

// Set is an unordered collection of calendar days.
type Set map[Date]struct{}

func NewSet(days ...Date) Set {
	s := make(Set, len(days))
	for _, d := range days {
		s[d] = struct{}{}
	}
	return s
}

func (s Set) Add(d Date) {
	s[d] = struct{}{}
}

func (s Set) Remove(d Date) {
	delete(s, d)
}

func (s Set) Has(d Date) bool {
	_, ok := s[d]
	return ok
}

// ContainsAll reports whether every day is in the set.
func (s Set) ContainsAll(days []Date) bool {
	for _, d := range days {
		if !s.Has(d) {
			return false
		}
	}
	return true
}

// SubsetOf reports whether every member of s is also in other.
func (s Set) SubsetOf(other Set) bool {
	for d := range s {
		if !other.Has(d) {
			return false
		}
	}
	return true
}

func (s Set) Clone() Set {
	out := make(Set, len(s))
	for d := range s {
		out[d] = struct{}{}
	}
	return out
}

// Sorted returns the members in ascending order.
func (s Set) Sorted() []Date {
	out := make([]Date, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func (s Set) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, d := range sorted {
		out[i] = d.String()
	}
	return out
}

// ParseSet parses a list of YYYY-MM-DD values, collapsing duplicates.
func ParseSet(values []string) (Set, error) {
	s := make(Set, len(values))
	for _, v := range values {
		d, err := Parse(v)
		if err != nil {
			return nil, err
		}
		s.Add(d)
	}
	return s, nil
}
