package cli

import (
	"fmt"

	"github.com/manifoldco/promptui"

	"sbrenamer/internal/settings"
)

// promptValue asks for a value of key on the terminal. Keys with a fixed set
// of options get a selection list.
func promptValue(store *settings.Store, key string) (string, error) {
	current, err := store.Get(key)
	if err != nil {
		return "", err
	}

	switch key {
	case settings.KeySourceDir, settings.KeyNumberOfDays:
		prompt := promptui.Prompt{
			Label:   key,
			Default: current,
		}
		return prompt.Run()
	}

	items := keyOptions(key)
	cursor := 0
	for i, item := range items {
		if item == current {
			cursor = i
		}
	}

	prompt := promptui.Select{
		Label:     fmt.Sprintf("%s (current: %s)", key, current),
		Items:     items,
		CursorPos: cursor,
	}
	_, value, err := prompt.Run()
	return value, err
}
