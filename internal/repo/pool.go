package repo

// Pool is an ordered sequence of repository indexes. Iteration order is the
// order the caller assembled; first-match-wins lookups depend on it.
type Pool []*Index

// ForEach visits every index in order. The callback may set done to stop the
// iteration; a non-nil error aborts it and is returned as-is.
func (p Pool) ForEach(fn func(ri *Index, done *bool) error) error {
	done := false
	for _, ri := range p {
		if err := fn(ri, &done); err != nil {
			return err
		}
		if done {
			break
		}
	}
	return nil
}
