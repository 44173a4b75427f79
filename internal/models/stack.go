package models

import (
	"fmt"

	"github.com/kakikik/ColabBTR/pkg/field"
)

// Frame represents a single acquired AFM height image with metadata
type Frame struct {
	// Heights is the height field of this frame
	Heights *field.Field

	// Index is the position of this frame in the acquisition sequence
	Index int

	// Source is the original filename of the frame
	Source string
}

// Stack represents an ordered sequence of AFM frames acquired with the same
// scan settings, the input unit of blind tip reconstruction
type Stack struct {
	// Frames in acquisition order
	Frames []Frame

	// Rows and Cols are the shared grid dimensions of every frame
	Rows, Cols int
}

// NewStack builds a stack from frames, recording the shared grid shape.
func NewStack(frames []Frame) (*Stack, error) {
	s := &Stack{Frames: frames}
	if len(frames) > 0 && frames[0].Heights != nil {
		s.Rows = frames[0].Heights.Rows
		s.Cols = frames[0].Heights.Cols
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks that the stack is non-empty and every frame matches the
// shared grid shape.
func (s *Stack) Validate() error {
	if len(s.Frames) == 0 {
		return fmt.Errorf("models: stack has no frames")
	}
	for i, fr := range s.Frames {
		if fr.Heights == nil {
			return fmt.Errorf("models: frame %d has no height data", i)
		}
		if fr.Heights.Rows != s.Rows || fr.Heights.Cols != s.Cols {
			return fmt.Errorf("models: frame %d is %dx%d, want %dx%d",
				i, fr.Heights.Rows, fr.Heights.Cols, s.Rows, s.Cols)
		}
	}
	return nil
}

// Fields returns the height fields of all frames in order, the form the
// reconstruction and filtering packages consume.
func (s *Stack) Fields() []*field.Field {
	out := make([]*field.Field, len(s.Frames))
	for i := range s.Frames {
		out[i] = s.Frames[i].Heights
	}
	return out
}
