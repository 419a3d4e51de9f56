package airtable

import (
	"fmt"
	"strings"
)

// filterByFormula builders. Linked-record fields cannot be compared with
// "=" directly, so ownership filters join the link array and substring
// match on the record id.

func escapeFormulaString(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

// userFormula matches rows whose {user} link contains userID.
func userFormula(userID string) string {
	return fmt.Sprintf(`FIND("%s", ARRAYJOIN({user}))`, escapeFormulaString(userID))
}

// visibleToFormula matches rows the user owns or is shared into.
func visibleToFormula(userID string) string {
	id := escapeFormulaString(userID)
	return fmt.Sprintf(`OR(FIND("%s", ARRAYJOIN({user})), FIND("%s", ARRAYJOIN({shared_with})))`, id, id)
}

// emailFormula matches a user row by email, case-insensitively.
func emailFormula(email string) string {
	return fmt.Sprintf(`LOWER({email}) = "%s"`, escapeFormulaString(strings.ToLower(email)))
}

// tokenHashFormula matches a refresh-token row by its hash.
func tokenHashFormula(tokenHash string) string {
	return fmt.Sprintf(`{token_hash} = "%s"`, escapeFormulaString(tokenHash))
}
