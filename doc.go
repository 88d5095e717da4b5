// Package conclave orchestrates multi-step LLM runs with built-in
// verification. A goal is decomposed into a dependency graph of subtasks;
// each subtask is answered by sampling several proposals concurrently,
// electing one, and gating it through a judge backed by deterministic tooling
// suites, with a bounded retry budget. Every planner, solver and judge step
// is recorded in an append-only evidence ledger so a finished run can be
// audited end to end.
//
// Conclave is designed to be embedded in host applications. End-users
// typically interact with the engine via the high-level Service façade
// exposed by the root package:
//
//	srv, _ := conclave.New()
//	rt := srv.Runtime()
//	_ = rt.Start(ctx)
//	defer rt.Shutdown()
//	output, _ := rt.Run(ctx, "Summarise EV adoption trends in Norway")
//	fmt.Println(output.Final.Text)
//
// For more details see the README and individual sub-packages.
package conclave
