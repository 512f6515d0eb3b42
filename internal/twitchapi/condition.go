package twitchapi

import "github.com/nicklaw5/helix/v2"

// ConditionField is a single key-value pair from an EventSub subscription condition
type ConditionField struct {
	Key   string
	Value string
}

// ConditionFields lists the fields of cond that are set, always in the same order:
// broadcaster, from-broadcaster, to-broadcaster, moderator, reward, client, extension
// client, then user
func ConditionFields(cond *helix.EventSubCondition) []ConditionField {
	fields := make([]ConditionField, 0, 2)
	for _, f := range []ConditionField{
		{"broadcaster_user_id", cond.BroadcasterUserID},
		{"from_broadcaster_user_id", cond.FromBroadcasterUserID},
		{"to_broadcaster_user_id", cond.ToBroadcasterUserID},
		{"moderator_user_id", cond.ModeratorUserID},
		{"reward_id", cond.RewardID},
		{"client_id", cond.ClientID},
		{"extension_client_id", cond.ExtensionClientID},
		{"user_id", cond.UserID},
	} {
		if f.Value != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// FormatCondition converts a condition to a map so that it can be JSON-serialized
// without empty fields, which helix.EventSubCondition's struct tags would include
func FormatCondition(cond *helix.EventSubCondition) map[string]string {
	result := make(map[string]string)
	for _, f := range ConditionFields(cond) {
		result[f.Key] = f.Value
	}
	return result
}
