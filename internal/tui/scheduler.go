package tui

import (
	"context"
	"fmt"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

// Scheduler 是无终端的渲染循环：每处理一条消息就调用一次 View 并写出整帧。
// 命令在独立 goroutine 中执行，结果回送到同一个循环。
type Scheduler struct {
	Model tea.Model
	Out   io.Writer
	// Plain 去掉 ANSI 样式后输出。
	Plain bool
	// Separator 为真时在每帧前写入帧序号。
	Separator bool

	mu     sync.Mutex
	frames int
}

// Run 一直运行到模型返回 tea.Quit 或 ctx 结束。
func (s *Scheduler) Run(ctx context.Context) error {
	msgs := make(chan tea.Msg, 64)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	exec := func(cmd tea.Cmd) {
		if cmd == nil {
			return
		}
		go func() {
			msg := cmd()
			if msg == nil {
				return
			}
			select {
			case msgs <- msg:
			case <-runCtx.Done():
			}
		}()
	}

	model := s.Model
	exec(model.Init())
	if err := s.render(model); err != nil {
		return err
	}
	for {
		select {
		case <-runCtx.Done():
			return nil
		case msg := <-msgs:
			switch msg := msg.(type) {
			case tea.QuitMsg:
				return nil
			case tea.BatchMsg:
				for _, cmd := range msg {
					exec(cmd)
				}
				continue
			}
			var cmd tea.Cmd
			model, cmd = model.Update(msg)
			s.Model = model
			if err := s.render(model); err != nil {
				return err
			}
			exec(cmd)
		}
	}
}

// Frames 返回已写出的帧数。
func (s *Scheduler) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

func (s *Scheduler) render(model tea.Model) error {
	frame := model.View()
	if s.Plain {
		frame = ansi.Strip(frame)
	}
	s.mu.Lock()
	s.frames++
	n := s.frames
	s.mu.Unlock()
	if s.Out == nil {
		return nil
	}
	if s.Separator {
		if _, err := fmt.Fprintf(s.Out, "--- frame %d ---\n", n); err != nil {
			return err
		}
	}
	_, err := io.WriteString(s.Out, frame+"\n")
	return err
}
