package domain

// AggregateUnreadCount sums the unread counts of every contributing slot in
// index order. It returns nil when no slot contributes; a contributing slot
// without a count still turns the result into a non-nil zero.
func AggregateUnreadCount(states []AccountState, predicate EmailPredicate) *int {
	var total *int
	for _, state := range states {
		if !Contributes(predicate, state.Email) {
			continue
		}
		if total == nil {
			total = new(int)
		}
		if state.UnreadCount != nil {
			*total += *state.UnreadCount
		}
	}

	return total
}

// PreferredIndex picks the slot to show when a single mailbox is needed:
// the first contributing slot with unread mail, else the first contributing
// slot, else slot 0.
func PreferredIndex(states []AccountState, predicate EmailPredicate) int {
	for _, state := range states {
		if Contributes(predicate, state.Email) && state.UnreadCount != nil && *state.UnreadCount > 0 {
			return state.Index
		}
	}

	for _, state := range states {
		if Contributes(predicate, state.Email) {
			return state.Index
		}
	}

	return 0
}

func AccountInfos(states []AccountState, predicate EmailPredicate) []AccountInfo {
	infos := make([]AccountInfo, 0, len(states))
	for _, state := range states {
		infos = append(infos, AccountInfo{
			Index:          state.Index,
			Email:          state.Email,
			UnreadCount:    copyCount(state.UnreadCount),
			IsContributing: Contributes(predicate, state.Email),
			LastError:      state.LastError,
			LastUpdateTime: state.LastUpdateTime,
			FailureCount:   state.FailureCount,
		})
	}

	return infos
}

func copyCount(count *int) *int {
	if count == nil {
		return nil
	}
	v := *count
	return &v
}
