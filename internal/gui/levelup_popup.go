package gui

import (
	"fmt"
	"image/color"
	"math"
	"math/rand"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/koreawook/ClockApp/internal/constants"
	"github.com/koreawook/ClockApp/internal/level"
)

const (
	levelUpWidth  = 320
	levelUpHeight = 240
)

var fireworkColors = []color.NRGBA{colorYellow, colorPink, colorGreen, colorOrange, colorPrimary}

// LevelUpPopup congratulates the user on a new level and closes itself
// after a few seconds.
type LevelUpPopup struct {
	window   fyne.Window
	onClosed func(*LevelUpPopup)

	level     int
	fireworks *fireworks
	anim      *fyne.Animation
	timer     *time.Timer
	closed    bool
}

// NewLevelUpPopup builds the popup. onClosed runs once on the UI thread
// when the popup goes away.
func NewLevelUpPopup(a fyne.App, lvl int, message string, onClosed func(*LevelUpPopup)) *LevelUpPopup {
	p := &LevelUpPopup{level: lvl, onClosed: onClosed}
	p.window = a.NewWindow("Level Up")
	p.window.SetIcon(AppIcon())

	bg := canvas.NewLinearGradient(colorSky, colorPink, 0)

	msg := widget.NewLabel(message)
	msg.Alignment = fyne.TextAlignCenter
	msg.Wrapping = fyne.TextWrapWord

	body := container.NewVBox(
		VerticalSpacer(10),
		container.NewCenter(newText("🎉 Level Up", 24, true, color.White)),
		container.NewCenter(newText(fmt.Sprintf("레벨 %d", lvl), 30, true, colorYellow)),
		msg,
		NewPrimaryButton("계속하기", p.Close),
	)

	layers := []fyne.CanvasObject{bg}
	if c := level.CelebrationIntensity(lvl); c.Enabled() {
		p.fireworks = newFireworks(c, rand.New(rand.NewSource(time.Now().UnixNano())))
		layers = append(layers, p.fireworks.layer)
	}
	layers = append(layers, container.NewPadded(body))

	p.window.SetContent(container.NewStack(layers...))
	p.window.Resize(fyne.NewSize(levelUpWidth, levelUpHeight))
	p.window.SetFixedSize(true)
	p.window.SetCloseIntercept(p.Close)
	return p
}

// Level is the level being celebrated.
func (p *LevelUpPopup) Level() int {
	return p.level
}

// Show displays the popup and starts the auto-close timer.
func (p *LevelUpPopup) Show() {
	p.window.CenterOnScreen()
	p.window.Show()
	if p.fireworks != nil {
		p.anim = fyne.NewAnimation(time.Second, func(float32) { p.fireworks.step() })
		p.anim.RepeatCount = fyne.AnimationRepeatForever
		p.anim.Start()
	}
	p.timer = time.AfterFunc(constants.LevelUpAutoClose, func() {
		fyne.Do(p.Close)
	})
}

// Close hides the popup. Safe to call more than once; UI thread only.
func (p *LevelUpPopup) Close() {
	if p.closed {
		return
	}
	p.closed = true
	if p.timer != nil {
		p.timer.Stop()
	}
	if p.anim != nil {
		p.anim.Stop()
	}
	p.window.Close()
	if p.onClosed != nil {
		p.onClosed(p)
	}
}

type particle struct {
	dot    *canvas.Circle
	x, y   float32
	vx, vy float32
	life   float32
}

// fireworks draws bursts of fading particles over the popup background.
type fireworks struct {
	cfg   level.Celebration
	rnd   *rand.Rand
	layer *fyne.Container
	live  []*particle
}

func newFireworks(cfg level.Celebration, rnd *rand.Rand) *fireworks {
	return &fireworks{cfg: cfg, rnd: rnd, layer: container.NewWithoutLayout()}
}

func (f *fireworks) burst() {
	cx := float32(40 + f.rnd.Intn(levelUpWidth-80))
	cy := float32(30 + f.rnd.Intn(levelUpHeight/2))
	col := fireworkColors[f.rnd.Intn(len(fireworkColors))]
	for i := 0; i < f.cfg.Particles; i++ {
		angle := 2 * math.Pi * float64(i) / float64(f.cfg.Particles)
		speed := 1.5 + f.rnd.Float64()*2
		size := 1 + f.rnd.Float32()*(f.cfg.MaxSize-1)
		dot := canvas.NewCircle(col)
		dot.Resize(fyne.NewSize(size*2, size*2))
		p := &particle{
			dot:  dot,
			x:    cx,
			y:    cy,
			vx:   float32(math.Cos(angle) * speed),
			vy:   float32(math.Sin(angle) * speed),
			life: 1,
		}
		dot.Move(fyne.NewPos(p.x, p.y))
		f.live = append(f.live, p)
		f.layer.Add(dot)
	}
}

// step advances one animation frame.
func (f *fireworks) step() {
	if f.rnd.Float64() < f.cfg.SpawnRate {
		f.burst()
	}

	kept := f.live[:0]
	for _, p := range f.live {
		p.life -= 0.03
		if p.life <= 0 {
			f.layer.Remove(p.dot)
			continue
		}
		p.x += p.vx
		p.y += p.vy
		p.vy += 0.05
		c := p.dot.FillColor.(color.NRGBA)
		c.A = uint8(255 * p.life)
		p.dot.FillColor = c
		p.dot.Move(fyne.NewPos(p.x, p.y))
		p.dot.Refresh()
		kept = append(kept, p)
	}
	f.live = kept
}
