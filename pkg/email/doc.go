// Package email sends rendered notification mail through a provider.
//
// Sender is the provider abstraction. Two implementations ship:
//
//   - PostmarkSender delivers through Postmark's transactional API. The
//     configured SenderEmail is used when a message carries no From address
//     and SupportEmail, when set, becomes the Reply-To.
//   - FileSender writes each message as an .html body plus a .json metadata
//     file into a directory, for local development.
//
// Messages are validated before any provider call; invalid input yields
// ErrInvalidParams and provider failures yield ErrFailedToSendEmail.
//
//	sender, err := email.NewPostmarkSender(cfg)
//	if err != nil {
//	    return err
//	}
//	err = sender.Send(ctx, email.Message{
//	    To:       []string{"ann@contoso.com"},
//	    Subject:  "Approve report",
//	    HTMLBody: html,
//	})
package email
