// Package framework contains the behavior-driven test engine and its collaborators. The base
// package only holds shared types such as Logger; everything else is in subpackages:
//
// 1. bdd is the engine itself: suites contain contexts, contexts contain examples, and a single
// event loop runs them one after another in declaration order, whether an example finishes
// synchronously or suspends for a delayed callback.
//
// 2. assertions is the registry of named predicates that examples call through their Assert()
// surface; new kinds can be registered without touching the engine.
//
// 3. mock provides fake objects that record calls and are verified after each example.
//
// 4. output is the grouped, leveled text sink that all reporting goes through.
//
// 5. values defines the equality and string-coercion rules shared by assertions and mocks.
package framework
