package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("NameMustBeValid", func() {
	It("should accept hierarchical names", func() {
		Expect(func() { NameMustBeValid("Sim.Flash.Reader") }).NotTo(Panic())
	})

	It("should accept indexed names", func() {
		Expect(func() { NameMustBeValid("Sim.Flash[1].Serial") }).NotTo(Panic())
		Expect(func() { NameMustBeValid("Bank[1][2]") }).NotTo(Panic())
	})

	It("should panic if the name is empty", func() {
		Expect(func() { NameMustBeValid("") }).To(Panic())
	})

	It("should panic on an empty element", func() {
		Expect(func() { NameMustBeValid("Sim..Flash") }).To(Panic())
		Expect(func() { NameMustBeValid("Sim.Flash.") }).To(Panic())
	})

	It("should panic if an element includes an underscore", func() {
		Expect(func() { NameMustBeValid("Flash_0") }).To(Panic())
	})

	It("should panic if an element includes a dash", func() {
		Expect(func() { NameMustBeValid("Flash-0") }).To(Panic())
	})

	It("should panic if an element is not capitalized", func() {
		Expect(func() { NameMustBeValid("flash0") }).To(Panic())
	})

	It("should panic if brackets do not match", func() {
		Expect(func() { NameMustBeValid("Flash[0") }).To(Panic())
		Expect(func() { NameMustBeValid("Flash[0]]") }).To(Panic())
	})

	It("should panic if an index is not an integer", func() {
		Expect(func() { NameMustBeValid("Flash[a]") }).To(Panic())
		Expect(func() { NameMustBeValid("Flash[]") }).To(Panic())
	})

	It("should panic on text after an index", func() {
		Expect(func() { NameMustBeValid("Flash[0]Tail") }).To(Panic())
	})
})

var _ = Describe("BuildName", func() {
	It("should build names", func() {
		Expect(BuildName("", "Flash")).To(Equal("Flash"))
		Expect(BuildName("Sim", "Flash")).To(Equal("Sim.Flash"))
	})
})
