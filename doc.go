// Package productsheet generates Otera product sheets ("fiches produit")
// and exports them as single-page A5 PDFs.
//
// # Quick Start
//
// Create a service with a webhook client, generate a sheet, then export it:
//
//	client, err := webhook.NewClient(cfg.Webhook.URL)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svc, err := productsheet.New(productsheet.WithWebhook(client))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer svc.Close()
//
//	sess, err := svc.Generate(ctx, "Fraise", store.NewMemory(), "bio")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := sess.ExportFile(ctx, "out")
//
// # Pipeline
//
//  1. The webhook response envelope is unwrapped and checked for success.
//  2. The content (XML dialect or Markdown) is parsed into a Document, with
//     defaults for empty lists.
//  3. The Document is rendered into the card markup, badges and style
//     overrides included.
//  4. On export, remote images are inlined, the card is captured with
//     headless Chrome (go-rod) and the bitmap is placed on an A5 page.
//
// # Sessions
//
// A Session holds one sheet being edited. Every edit is written to its
// store.Store immediately, so Service.Load can reopen it later:
//
//	sess, err := svc.Load(st)
//	_ = sess.SetTitle("Fraise Gariguette")
//	_ = sess.SetBadgeHeight("bio", 96)
//	_ = sess.SetStyle("headerColor", "#E65B0C")
//
// Only one export per session runs at a time.
package productsheet
