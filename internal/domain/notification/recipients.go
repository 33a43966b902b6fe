package notification

// MaxGroupMembers is the documented policy ceiling for a broadcast group.
// It is not enforced; larger groups are logged and still sent.
const MaxGroupMembers = 1000

// ResolveSingle builds the recipients for a single-subject event. With admin
// notifications on and an admin number configured, the admin comes first.
// Numbers are neither validated nor de-duplicated.
func ResolveSingle(primary string, adminNotify bool, adminMobile string) RecipientSet {
	if adminNotify && adminMobile != "" {
		return RecipientSet{adminMobile, primary}
	}
	return RecipientSet{primary}
}

// ResolveGroup extracts the phone numbers of group members in retrieval order.
func ResolveGroup(members []GroupMember) RecipientSet {
	out := make(RecipientSet, 0, len(members))
	for _, m := range members {
		out = append(out, m.Mobile)
	}
	return out
}
