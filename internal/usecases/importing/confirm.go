package importing

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Confirmer decide se um cliente ainda não cadastrado pode ser criado
type Confirmer interface {
	ConfirmClientCreation(ctx context.Context, clientName string) (bool, error)
}

// AutoConfirmer aprova sempre. Usado nas importações sem operador (pasta de entrada).
type AutoConfirmer struct{}

func (AutoConfirmer) ConfirmClientCreation(context.Context, string) (bool, error) {
	return true, nil
}

// DeclineConfirmer recusa sempre
type DeclineConfirmer struct{}

func (DeclineConfirmer) ConfirmClientCreation(context.Context, string) (bool, error) {
	return false, nil
}

// PromptConfirmer pergunta ao operador no terminal.
// A leitura roda em uma goroutine para respeitar o cancelamento do ctx; se o ctx
// for cancelado antes da resposta, essa goroutine só termina quando In retornar
// (nova linha, EOF ou fechamento da entrada).
type PromptConfirmer struct {
	In  io.Reader
	Out io.Writer
}

func (p PromptConfirmer) ConfirmClientCreation(ctx context.Context, clientName string) (bool, error) {
	fmt.Fprintf(p.Out, "Cliente %q não encontrado. Deseja criá-lo? [s/N]: ", clientName)

	// buffers de 1 para a goroutine não bloquear no envio depois de um cancelamento
	answer := make(chan string, 1)
	failed := make(chan error, 1)
	go func() {
		line, err := bufio.NewReader(p.In).ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			failed <- err
			return
		}
		answer <- line
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-failed:
		if err == io.EOF {
			return false, nil
		}
		return false, fmt.Errorf("erro ao ler confirmação: %w", err)
	case line := <-answer:
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "s", "sim", "y", "yes":
			return true, nil
		}
		return false, nil
	}
}
