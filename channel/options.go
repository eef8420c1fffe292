package channel

import "fmt"

// MaxQueryLimit is the largest page GetMessages may request.
const MaxQueryLimit = 100

// MessageQuery selects a page of channel history. The zero value asks the
// collaborator for its default page. Around, Before and After are mutually
// exclusive anchors.
type MessageQuery struct {
	Around MessageID
	Before MessageID
	After  MessageID
	// Limit is 1..100; 0 leaves the choice to the collaborator.
	Limit int
	// Extra holds collaborator-specific keys passed through uninterpreted.
	Extra map[string]any
}

// Validate checks Limit's range and that at most one anchor is set.
func (q *MessageQuery) Validate() error {
	if q == nil {
		return nil
	}
	if q.Limit < 0 || q.Limit > MaxQueryLimit {
		return fmt.Errorf("%w: limit %d outside 1..%d", ErrInvalidQuery, q.Limit, MaxQueryLimit)
	}
	anchors := 0
	for _, id := range []MessageID{q.Around, q.Before, q.After} {
		if id != "" {
			anchors++
		}
	}
	if anchors > 1 {
		return fmt.Errorf("%w: around, before and after are mutually exclusive", ErrInvalidQuery)
	}
	return nil
}

// EditOptions lists the message fields to replace. Nil fields are left as they are.
type EditOptions struct {
	Content *string
	// Embeds replaces all embeds; a pointer to an empty slice removes them.
	Embeds *[]Embed
	Extra  map[string]any
}

// EditContent returns options that replace only the content.
func EditContent(content string) EditOptions {
	return EditOptions{Content: &content}
}

func (o EditOptions) Validate() error {
	if o.Content == nil && o.Embeds == nil && len(o.Extra) == 0 {
		return ErrEmptyEdit
	}
	return nil
}
