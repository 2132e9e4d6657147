package main

import "github.com/go-vgo/robotgo"

// robotPointer drives the real mouse and keyboard.
type robotPointer struct{}

func (robotPointer) ScreenSize() (int, int) {
	return robotgo.GetScreenSize()
}

func (robotPointer) Move(x, y int) {
	robotgo.Move(x, y)
}

func (robotPointer) Click(button string, double bool) {
	robotgo.Click(button, double)
}

func (robotPointer) Scroll(amount int, direction string) {
	robotgo.ScrollDir(amount, direction)
}

func (robotPointer) KeyTap(key string, modifiers []string) error {
	args := make([]interface{}, 0, len(modifiers))
	for _, m := range modifiers {
		args = append(args, m)
	}
	return robotgo.KeyTap(key, args...)
}
