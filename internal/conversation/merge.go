package conversation

import (
	"cmp"
	"slices"
)

// Counterparty returns the non-self side of m. When neither side is self the
// message is attributed to its sender.
func Counterparty(m Message, self string) string {
	if m.From == self {
		return m.To
	}
	return m.From
}

// Merge joins messages with the contact directory into the conversation list.
//
// Every directory phone yields a registered conversation, with or without
// messages. Every counterparty missing from the directory yields an
// unregistered one. Messages inside a conversation ascend by CreatedAt and the
// list descends by last message time; both sorts are stable, so equal
// timestamps keep input order.
func Merge(messages []Message, dir *Directory, self string) []Conversation {
	groups, order := groupByCounterparty(messages, self)

	out := make([]Conversation, 0, dir.Len()+len(order))
	for _, phone := range dir.Phones() {
		rec, _ := dir.Get(phone)
		out = append(out, newConversation(phone, &rec, groups[phone]))
	}
	for _, phone := range order {
		if dir.Has(phone) {
			continue
		}
		out = append(out, newConversation(phone, nil, groups[phone]))
	}

	slices.SortStableFunc(out, func(a, b Conversation) int {
		return cmp.Compare(b.LastMessageTimestamp, a.LastMessageTimestamp)
	})
	return out
}

func groupByCounterparty(messages []Message, self string) (map[string][]Message, []string) {
	groups := make(map[string][]Message)
	var order []string
	for _, m := range messages {
		phone := Counterparty(m, self)
		if _, ok := groups[phone]; !ok {
			order = append(order, phone)
		}
		groups[phone] = append(groups[phone], m)
	}
	for _, phone := range order {
		slices.SortStableFunc(groups[phone], func(a, b Message) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		})
	}
	return groups, order
}

func newConversation(phone string, contact *ContactRecord, msgs []Message) Conversation {
	c := Conversation{
		Phone:        phone,
		Contact:      contact,
		Messages:     msgs,
		IsRegistered: contact != nil,
	}
	if len(msgs) == 0 {
		c.Messages = []Message{}
		return c
	}
	last := msgs[len(msgs)-1]
	c.LastMessage = &last
	if !last.CreatedAt.IsZero() {
		c.LastMessageTimestamp = last.CreatedAt.UnixMilli()
	}
	return c
}
