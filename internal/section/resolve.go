package section

// Chooser presents the interactive picker over the registry and returns the
// chosen IDs. An empty result with a nil error means the user picked nothing.
// A failing chooser reports its own context; Resolve passes the error through.
type Chooser func(all []Section) ([]ID, error)

// Resolve decides which sections run. Non-interactive runs take the whole
// registry; interactive runs take the user's picks, reordered back into
// registry order so the report always reads the same way.
func Resolve(all []Section, opts Options, choose Chooser) ([]Section, error) {
	if !opts.Interactive {
		return all, nil
	}

	ids, err := choose(all)
	if err != nil {
		return nil, err
	}

	picked := make(map[ID]bool, len(ids))
	for _, id := range ids {
		picked[id] = true
	}

	var selected []Section
	for _, sec := range all {
		if picked[sec.ID] {
			selected = append(selected, sec)
		}
	}
	return selected, nil
}
