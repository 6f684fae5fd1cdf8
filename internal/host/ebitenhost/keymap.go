package ebitenhost

import "github.com/hajimehoshi/ebiten/v2"

// beastKeyEntry maps one host key to a (row, col) cell in the Beast's
// 8x12 key matrix (row*12+col, with Shift at (3,0) and Ctrl at (2,0)).
type beastKeyEntry struct {
	key      ebiten.Key
	row, col int
}

var beastKeyTable = []beastKeyEntry{
	{ebiten.KeyShiftLeft, 3, 0}, {ebiten.KeyShiftRight, 3, 0},
	{ebiten.KeyControlLeft, 2, 0}, {ebiten.KeyControlRight, 2, 0},

	{ebiten.KeyA, 0, 1}, {ebiten.KeyB, 0, 2}, {ebiten.KeyC, 0, 3},
	{ebiten.KeyD, 0, 4}, {ebiten.KeyE, 0, 5}, {ebiten.KeyF, 0, 6},
	{ebiten.KeyG, 1, 1}, {ebiten.KeyH, 1, 2}, {ebiten.KeyI, 1, 3},
	{ebiten.KeyJ, 1, 4}, {ebiten.KeyK, 1, 5}, {ebiten.KeyL, 1, 6},
	{ebiten.KeyM, 2, 1}, {ebiten.KeyN, 2, 2}, {ebiten.KeyO, 2, 3},
	{ebiten.KeyP, 2, 4}, {ebiten.KeyQ, 2, 5}, {ebiten.KeyR, 2, 6},
	{ebiten.KeyS, 3, 1}, {ebiten.KeyT, 3, 2}, {ebiten.KeyU, 3, 3},
	{ebiten.KeyV, 3, 4}, {ebiten.KeyW, 3, 5}, {ebiten.KeyX, 3, 6},
	{ebiten.KeyY, 4, 1}, {ebiten.KeyZ, 4, 2},

	{ebiten.Key0, 4, 3}, {ebiten.Key1, 4, 4}, {ebiten.Key2, 4, 5},
	{ebiten.Key3, 4, 6}, {ebiten.Key4, 5, 1}, {ebiten.Key5, 5, 2},
	{ebiten.Key6, 5, 3}, {ebiten.Key7, 5, 4}, {ebiten.Key8, 5, 5},
	{ebiten.Key9, 5, 6},

	{ebiten.KeyEnter, 6, 1}, {ebiten.KeySpace, 6, 2}, {ebiten.KeyBackspace, 6, 3},
	{ebiten.KeyEscape, 6, 4}, {ebiten.KeyTab, 6, 5},
	{ebiten.KeyArrowUp, 6, 6}, {ebiten.KeyArrowDown, 7, 1},
	{ebiten.KeyArrowLeft, 7, 2}, {ebiten.KeyArrowRight, 7, 3},
}
