package images

import "fmt"

// Seed adds a few small placeholder images so a fresh origin has content.
func (s *Store) Seed() error {
	for i, color := range []string{"#c58b4b", "#3b3b3b", "#f2e3c6"} {
		svg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="64" height="64"><circle cx="32" cy="32" r="28" fill="%s"/></svg>`, color)
		if _, err := s.Put(fmt.Sprintf("dogs/%d.svg", i+1), "image/svg+xml", []byte(svg)); err != nil {
			return err
		}
	}
	return nil
}
