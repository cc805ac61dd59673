package util

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// ExtractChoiceIDs collects selected choice IDs from form fields whose name
// starts with ChoiceFieldPrefix. Every value of such a field must be an ID.
func ExtractChoiceIDs(form url.Values) ([]uint, error) {
	keys := make([]string, 0, len(form))
	for key := range form {
		if strings.HasPrefix(key, ChoiceFieldPrefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var ids []uint
	for _, key := range keys {
		for _, value := range form[key] {
			id, err := strconv.ParseUint(strings.TrimSpace(value), 10, 32)
			if err != nil {
				return nil, err
			}
			ids = append(ids, uint(id))
		}
	}
	return ids, nil
}
