package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdHashPassword() *cli.Command {
	var password string

	return &cli.Command{
		Name:  "hash-password",
		Usage: "Print the bcrypt hash of an admin password (reads stdin when --password is omitted)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "password",
				Usage:       "Password to hash",
				Destination: &password,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if password == "" {
				line, err := bufio.NewReader(c.Root().Reader).ReadString('\n')
				if err != nil && line == "" {
					return goerr.Wrap(err, "failed to read password")
				}
				password = strings.TrimRight(line, "\r\n")
			}

			hash, err := usecase.HashPassword(password)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(c.Root().Writer, hash)
			return nil
		},
	}
}
