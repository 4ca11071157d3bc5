package web

import (
	"fmt"
	"html/template"

	"github.com/esimov/emojimaker"
)

// thumbSize is the size of the layer previews listed on the page.
const thumbSize = 96

type OptionView struct {
	Index    int
	Name     string
	Href     template.URL
	Thumb    template.URL
	Selected bool
}

type CategoryView struct {
	Key      string
	Title    string
	Options  []OptionView
	NoneHref template.URL
	// Empty is set when the category has no layer in the gallery.
	Empty bool
	None  bool
}

type ViewModel struct {
	Categories []CategoryView
	Query      string
	ShareURL   string
	Composite  template.URL
	Export     template.URL
	Width      int
	Height     int
}

func (s *Server) makeViewModel(sel emojimaker.Selection, base string) (ViewModel, error) {
	share, err := sel.ShareURL(base)
	if err != nil {
		return ViewModel{}, err
	}
	query := sel.Encode()

	vm := ViewModel{
		Query:     query,
		ShareURL:  share,
		Composite: template.URL("/composite.png?" + query),
		Export:    template.URL("/export?" + query),
		Width:     s.Compositor.Width,
		Height:    s.Compositor.Height,
	}

	for _, cat := range emojimaker.Categories {
		layers := s.Gallery.Layers(cat)
		cv := CategoryView{
			Key:      cat.Key(),
			Title:    s.Gallery.Title(cat),
			NoneHref: template.URL("/?" + sel.With(cat, emojimaker.None).Encode()),
			Empty:    len(layers) == 0,
			None:     !sel.IsSet(cat),
		}
		for i, l := range layers {
			cv.Options = append(cv.Options, OptionView{
				Index:    i,
				Name:     l.Name,
				Href:     template.URL("/?" + sel.With(cat, i).Encode()),
				Thumb:    template.URL(fmt.Sprintf("/layers/%s/%d?size=%d", cat.Key(), i, thumbSize)),
				Selected: sel.Get(cat) == i,
			})
		}
		vm.Categories = append(vm.Categories, cv)
	}
	return vm, nil
}
